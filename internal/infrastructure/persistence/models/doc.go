// Package models contains the GORM persistence models and their
// conversions to and from domain entities. Domain packages never see
// these types; repositories map at the boundary.
package models
