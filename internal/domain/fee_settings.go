package domain

import "github.com/shopspring/decimal"

type FeePayer string

const (
	FeePayerBuyer     FeePayer = "buyer"
	FeePayerOrganizer FeePayer = "organizer"
)

// FeeSettings is the per-event fee configuration. It is read once per
// checkout and reused for both the preview and the authoritative charge.
type FeeSettings struct {
	EventID                 string
	PlatformFeePercentage   decimal.Decimal
	ProcessingFeePercentage decimal.Decimal
	ProcessingFeeFixed      decimal.Decimal
	FeePayer                FeePayer
}
