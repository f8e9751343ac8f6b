package marketplace

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/brickdesk/backend/internal/domain/platform"
)

// paypalTimeLayout is PayPal's transaction timestamp format
const paypalTimeLayout = "2006-01-02T15:04:05-0700"

// PayPalNormalizer maps PayPal transaction payloads into canonical
// transactions. Pure, no I/O. Records without a transaction id are
// dropped; a missing fee defaults to zero (and is then subject to the
// zero-fee persistence filter downstream).
type PayPalNormalizer struct{}

// NewPayPalNormalizer creates a PayPal normalizer
func NewPayPalNormalizer() *PayPalNormalizer { return &PayPalNormalizer{} }

// Kind returns the record kind this normalizer produces
func (n *PayPalNormalizer) Kind() platform.RecordKind { return platform.RecordKindTransaction }

// Normalize converts one raw PayPal payload; (nil, nil) means dropped
func (n *PayPalNormalizer) Normalize(raw platform.RawRecord) (platform.CanonicalRecord, error) {
	var detail PayPalTransactionDetail
	if err := json.Unmarshal(raw.Payload, &detail); err != nil {
		return nil, fmt.Errorf("paypal: unparseable payload: %w", err)
	}

	info := detail.TransactionInfo
	if info.TransactionID == "" {
		// No stable identifier means no natural key; the record cannot
		// be reconciled.
		return nil, nil
	}

	tx := &platform.Transaction{
		ExternalID: info.TransactionID,
		Platform:   platform.CodePayPal,
		Type:       info.TransactionEventCode,
		Status:     info.TransactionStatus,
		Subject:    info.TransactionSubject,
		RawData:    string(raw.Payload),
	}

	if info.TransactionAmount != nil {
		tx.GrossAmount = ParseDecimal(info.TransactionAmount.Value)
		tx.Currency = info.TransactionAmount.CurrencyCode
	}
	// PayPal reports fees as negative amounts; the ledger stores the
	// absolute fee. Absent fee defaults to zero.
	if info.FeeAmount != nil {
		tx.FeeAmount = ParseDecimal(info.FeeAmount.Value).Abs()
	}
	tx.NetAmount = tx.GrossAmount.Sub(tx.FeeAmount)

	if detail.PayerInfo != nil {
		tx.CounterpartyEmail = detail.PayerInfo.EmailAddress
	}

	if t, err := time.Parse(paypalTimeLayout, info.TransactionInitiationDate); err == nil {
		tx.InitiatedAt = t
	} else if t, err := time.Parse(time.RFC3339, info.TransactionInitiationDate); err == nil {
		tx.InitiatedAt = t
	}

	return tx, nil
}

var _ platform.Normalizer = (*PayPalNormalizer)(nil)
