package domain

import "github.com/shopspring/decimal"

// FeeBreakdown is the result of a checkout fee computation. When the
// organizer absorbs the fees, TotalAmount equals Subtotal but the fee
// fields are still populated for payout deduction.
type FeeBreakdown struct {
	Subtotal      decimal.Decimal
	PlatformFee   decimal.Decimal
	ProcessingFee decimal.Decimal
	TotalAmount   decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// CalculateFees computes subtotal, platform fee, processing fee and the
// buyer total from a unit price, quantity and fee configuration. It is
// pure: the same inputs always produce the same breakdown. Each fee is
// rounded to currency precision independently.
func CalculateFees(unitPrice decimal.Decimal, quantity int, settings FeeSettings) FeeBreakdown {
	qty := decimal.NewFromInt(int64(quantity))
	subtotal := unitPrice.Mul(qty)

	platformFee := subtotal.Mul(settings.PlatformFeePercentage).Div(hundred).Round(2)
	processingFee := subtotal.Mul(settings.ProcessingFeePercentage).Div(hundred).
		Add(settings.ProcessingFeeFixed.Mul(qty)).
		Round(2)

	total := subtotal
	if settings.FeePayer == FeePayerBuyer {
		total = subtotal.Add(platformFee).Add(processingFee)
	}

	return FeeBreakdown{
		Subtotal:      subtotal,
		PlatformFee:   platformFee,
		ProcessingFee: processingFee,
		TotalAmount:   total,
	}
}

// ApplicationFeeMinorUnits is the portion of the charge kept by the
// platform, in currency minor units (platform fee + processing fee).
func (f FeeBreakdown) ApplicationFeeMinorUnits() int64 {
	return f.PlatformFee.Add(f.ProcessingFee).Mul(hundred).Round(0).IntPart()
}

// TotalMinorUnits is the buyer charge in currency minor units.
func (f FeeBreakdown) TotalMinorUnits() int64 {
	return f.TotalAmount.Mul(hundred).Round(0).IntPart()
}
