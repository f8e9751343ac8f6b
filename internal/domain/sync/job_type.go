package sync

import "github.com/brickdesk/backend/internal/domain/platform"

// JobType identifies one (platform, record kind) sync job
type JobType string

const (
	// JobTypeBrickLinkOrders syncs BrickLink orders
	JobTypeBrickLinkOrders JobType = "bricklink_orders"
	// JobTypeBrickOwlOrders syncs Brick Owl orders
	JobTypeBrickOwlOrders JobType = "brickowl_orders"
	// JobTypeAmazonOrders syncs Amazon marketplace orders
	JobTypeAmazonOrders JobType = "amazon_orders"
	// JobTypeEbayOrders syncs eBay orders
	JobTypeEbayOrders JobType = "ebay_orders"
	// JobTypeAmazonPricing syncs Amazon price snapshots
	JobTypeAmazonPricing JobType = "amazon_pricing"
	// JobTypePayPalTransactions syncs PayPal transactions
	JobTypePayPalTransactions JobType = "paypal_transactions"
)

// AllJobTypes returns every defined job type
func AllJobTypes() []JobType {
	return []JobType{
		JobTypeBrickLinkOrders,
		JobTypeBrickOwlOrders,
		JobTypeAmazonOrders,
		JobTypeEbayOrders,
		JobTypeAmazonPricing,
		JobTypePayPalTransactions,
	}
}

// IsValid returns true if the job type is valid
func (j JobType) IsValid() bool {
	switch j {
	case JobTypeBrickLinkOrders, JobTypeBrickOwlOrders, JobTypeAmazonOrders,
		JobTypeEbayOrders, JobTypeAmazonPricing, JobTypePayPalTransactions:
		return true
	default:
		return false
	}
}

// String returns the string representation of JobType
func (j JobType) String() string {
	return string(j)
}

// Platform returns the platform a job type pulls from
func (j JobType) Platform() platform.Code {
	switch j {
	case JobTypeBrickLinkOrders:
		return platform.CodeBrickLink
	case JobTypeBrickOwlOrders:
		return platform.CodeBrickOwl
	case JobTypeAmazonOrders, JobTypeAmazonPricing:
		return platform.CodeAmazon
	case JobTypeEbayOrders:
		return platform.CodeEbay
	case JobTypePayPalTransactions:
		return platform.CodePayPal
	default:
		return ""
	}
}

// Kind returns the record kind a job type produces
func (j JobType) Kind() platform.RecordKind {
	switch j {
	case JobTypePayPalTransactions:
		return platform.RecordKindTransaction
	case JobTypeAmazonPricing:
		return platform.RecordKindPriceSnapshot
	default:
		return platform.RecordKindOrder
	}
}
