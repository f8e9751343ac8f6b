package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brickdesk/backend/internal/domain/platform"
)

// CredentialModel is the persistence model for platform credentials,
// unique on (user_id, platform)
type CredentialModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_credentials_user_platform,priority:1"`
	Platform     string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_credentials_user_platform,priority:2"`
	ClientID     string    `gorm:"type:text"`
	ClientSecret string    `gorm:"type:text"`
	AccessToken  string    `gorm:"type:text"`
	TokenSecret  string    `gorm:"type:text"`
	RefreshToken string    `gorm:"type:text"`
	Sandbox      bool      `gorm:"not null;default:false"`
	ExpiresAt    *time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CredentialModel) TableName() string {
	return "platform_credentials"
}

// ToDomain converts the persistence model to a domain Credential
func (m *CredentialModel) ToDomain() *platform.Credential {
	return &platform.Credential{
		ID:           m.ID,
		UserID:       m.UserID,
		Platform:     platform.Code(m.Platform),
		ClientID:     m.ClientID,
		ClientSecret: m.ClientSecret,
		AccessToken:  m.AccessToken,
		TokenSecret:  m.TokenSecret,
		RefreshToken: m.RefreshToken,
		Sandbox:      m.Sandbox,
		ExpiresAt:    m.ExpiresAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Credential
func (m *CredentialModel) FromDomain(c *platform.Credential) {
	m.ID = c.ID
	m.UserID = c.UserID
	m.Platform = string(c.Platform)
	m.ClientID = c.ClientID
	m.ClientSecret = c.ClientSecret
	m.AccessToken = c.AccessToken
	m.TokenSecret = c.TokenSecret
	m.RefreshToken = c.RefreshToken
	m.Sandbox = c.Sandbox
	m.ExpiresAt = c.ExpiresAt
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// TransactionModel is the persistence model for processor transactions,
// unique on (user_id, external_id)
type TransactionModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_transactions_user_external,priority:1"`
	ExternalID        string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_transactions_user_external,priority:2"`
	Platform          string          `gorm:"type:varchar(20);not null"`
	Type              string          `gorm:"type:varchar(40)"`
	Status            string          `gorm:"type:varchar(20)"`
	GrossAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FeeAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	NetAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency          string          `gorm:"type:varchar(10)"`
	CounterpartyEmail string          `gorm:"type:varchar(255)"`
	Subject           string          `gorm:"type:varchar(500)"`
	InitiatedAt       time.Time       `gorm:"not null;index"`
	RawData           string          `gorm:"type:jsonb"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "platform_transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *platform.Transaction {
	return &platform.Transaction{
		ExternalID:        m.ExternalID,
		Platform:          platform.Code(m.Platform),
		Type:              m.Type,
		Status:            m.Status,
		GrossAmount:       m.GrossAmount,
		FeeAmount:         m.FeeAmount,
		NetAmount:         m.NetAmount,
		Currency:          m.Currency,
		CounterpartyEmail: m.CounterpartyEmail,
		Subject:           m.Subject,
		InitiatedAt:       m.InitiatedAt,
		RawData:           m.RawData,
	}
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(userID uuid.UUID, t *platform.Transaction) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.UserID = userID
	m.ExternalID = t.ExternalID
	m.Platform = string(t.Platform)
	m.Type = t.Type
	m.Status = t.Status
	m.GrossAmount = t.GrossAmount
	m.FeeAmount = t.FeeAmount
	m.NetAmount = t.NetAmount
	m.Currency = t.Currency
	m.CounterpartyEmail = t.CounterpartyEmail
	m.Subject = t.Subject
	m.InitiatedAt = t.InitiatedAt
	m.RawData = t.RawData
}

// PriceSnapshotModel is the persistence model for daily pricing
// observations, unique on (user_id, asin, snapshot_date)
type PriceSnapshotModel struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_price_snapshots_user_asin_date,priority:1"`
	ASIN         string           `gorm:"type:varchar(20);not null;uniqueIndex:idx_price_snapshots_user_asin_date,priority:2"`
	SnapshotDate time.Time        `gorm:"type:date;not null;uniqueIndex:idx_price_snapshots_user_asin_date,priority:3"`
	Platform     string           `gorm:"type:varchar(20);not null"`
	ListPrice    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	BuyBoxPrice  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SalesRank    int64            `gorm:"not null;default:0"`
	OfferCount   int              `gorm:"not null;default:0"`
	Currency     string           `gorm:"type:varchar(10)"`
	RawData      string           `gorm:"type:jsonb"`
	CreatedAt    time.Time        `gorm:"not null"`
	UpdatedAt    time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PriceSnapshotModel) TableName() string {
	return "price_snapshots"
}

// ToDomain converts the persistence model to a domain PriceSnapshot
func (m *PriceSnapshotModel) ToDomain() *platform.PriceSnapshot {
	return &platform.PriceSnapshot{
		ASIN:         m.ASIN,
		Platform:     platform.Code(m.Platform),
		SnapshotDate: m.SnapshotDate,
		ListPrice:    m.ListPrice,
		BuyBoxPrice:  m.BuyBoxPrice,
		SalesRank:    m.SalesRank,
		OfferCount:   m.OfferCount,
		Currency:     m.Currency,
		RawData:      m.RawData,
	}
}

// FromDomain populates the persistence model from a domain PriceSnapshot
func (m *PriceSnapshotModel) FromDomain(userID uuid.UUID, s *platform.PriceSnapshot) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.UserID = userID
	m.ASIN = s.ASIN
	m.SnapshotDate = s.SnapshotDate
	m.Platform = string(s.Platform)
	m.ListPrice = s.ListPrice
	m.BuyBoxPrice = s.BuyBoxPrice
	m.SalesRank = s.SalesRank
	m.OfferCount = s.OfferCount
	m.Currency = s.Currency
	m.RawData = s.RawData
}
