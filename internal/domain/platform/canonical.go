package platform

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Raw records
// ---------------------------------------------------------------------------

// RecordKind identifies which canonical shape a raw payload normalizes into
type RecordKind string

const (
	// RecordKindOrder is a marketplace order
	RecordKindOrder RecordKind = "ORDER"
	// RecordKindTransaction is a payment processor transaction
	RecordKindTransaction RecordKind = "TRANSACTION"
	// RecordKindPriceSnapshot is a daily pricing observation for a listing
	RecordKindPriceSnapshot RecordKind = "PRICE_SNAPSHOT"
)

// RawRecord is one platform-native payload as returned by an adapter,
// before normalization
type RawRecord struct {
	// Platform identifies the source platform
	Platform Code
	// Kind identifies the canonical shape this payload maps to
	Kind RecordKind
	// Payload is the platform-native JSON, preserved verbatim for audit
	Payload []byte
}

// Page is one batch of raw records from a paginated platform endpoint
type Page struct {
	// Records contains the raw payloads in platform order
	Records []RawRecord
	// NextPageToken is the opaque token for the next page
	NextPageToken string
	// HasMore indicates another page is available
	HasMore bool
}

// TimeWindow bounds one sync run's fetch range
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// ---------------------------------------------------------------------------
// Canonical records
// ---------------------------------------------------------------------------

// CanonicalRecord is the platform-agnostic shape a normalizer produces.
// NaturalKey is the stable platform-derived identifier used for upsert
// matching; ObservedAt drives cursor advancement.
type CanonicalRecord interface {
	NaturalKey() string
	ObservedAt() time.Time
}

// Transaction is a normalized payment processor transaction
type Transaction struct {
	// ExternalID is the processor's transaction id
	ExternalID string
	Platform   Code
	// Type is the processor's transaction type code
	Type string
	// Status is the processor's status (e.g. S, P, D for PayPal)
	Status string
	// GrossAmount is the transaction gross value
	GrossAmount decimal.Decimal
	// FeeAmount is the processor fee (negative or positive per processor)
	FeeAmount decimal.Decimal
	// NetAmount is gross minus fee
	NetAmount decimal.Decimal
	Currency  string
	// CounterpartyEmail is the payer/payee email if disclosed
	CounterpartyEmail string
	// Subject is the human-readable transaction subject
	Subject string
	// InitiatedAt is when the transaction happened at the processor
	InitiatedAt time.Time
	// RawData is the platform payload preserved for audit
	RawData string
}

// NaturalKey returns the processor transaction id
func (t *Transaction) NaturalKey() string { return t.ExternalID }

// ObservedAt returns the processor-side transaction time
func (t *Transaction) ObservedAt() time.Time { return t.InitiatedAt }

// PriceSnapshot is one day's pricing observation for a listing
type PriceSnapshot struct {
	// ASIN is the marketplace listing identifier
	ASIN     string
	Platform Code
	// SnapshotDate is the observation date (UTC midnight)
	SnapshotDate time.Time
	// ListPrice is the listing's own price
	ListPrice decimal.Decimal
	// BuyBoxPrice is the winning offer price; nil when the enrichment
	// endpoint was unavailable (enrichment is best-effort)
	BuyBoxPrice *decimal.Decimal
	// SalesRank is the category sales rank, 0 when absent
	SalesRank int64
	// OfferCount is the number of competing offers, 0 when absent
	OfferCount int
	Currency   string
	RawData    string
}

// NaturalKey combines ASIN and snapshot date
func (s *PriceSnapshot) NaturalKey() string {
	return s.ASIN + ":" + s.SnapshotDate.UTC().Format("2006-01-02")
}

// ObservedAt returns the snapshot date
func (s *PriceSnapshot) ObservedAt() time.Time { return s.SnapshotDate }
