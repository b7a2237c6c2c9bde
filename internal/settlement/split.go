// Package settlement computes how a sale's gross proceeds are split
// between the seller, platform treasuries and royalty creators.
//
// The split is pure: it reads no records and moves no funds. The engine
// runs it inside the operation's transaction and journals the payouts.
package settlement

import (
	"math"
	"math/bits"

	"github.com/roach88/bourse/internal/market"
)

// Input is everything the split depends on.
type Input struct {
	Gross      uint64
	Seller     string
	FeeRate    uint64 // permyriad
	Treasuries []market.Treasury
	Royalty    market.RoyaltyInfo
}

// Plan is a computed split. Payouts are in payment order: seller first,
// then treasuries in slot order, then paid creators in metadata order.
type Plan struct {
	Gross        uint64
	RoyaltyTotal uint64
	PlatformFee  uint64
	SellerNet    uint64
	Payouts      []market.Payout
}

// Paid returns the sum of all payouts.
func (p Plan) Paid() uint64 {
	var total uint64
	for _, po := range p.Payouts {
		total += po.Amount
	}
	return total
}

// Dust returns the rounding remainder that no payout receives.
func (p Plan) Dust() uint64 {
	return p.Gross - p.Paid()
}

// Compute splits in.Gross.
//
//	royalty_total = floor(G*R/10000)
//	platform_fee  = floor(G*F/10000)
//	seller_net    = G - royalty_total - platform_fee
//
// Each treasury receives floor(platform_fee*rate/10000) and each verified
// creator with a nonzero share floor(royalty_total*share/100).
func Compute(in Input) (Plan, error) {
	if len(in.Treasuries) == 0 {
		return Plan{}, market.State(market.CodeNoTreasury, "no treasury configured")
	}
	if err := ValidateRoyalty(in.Royalty); err != nil {
		return Plan{}, err
	}
	if in.FeeRate >= market.Permyriad {
		return Plan{}, market.Validation(market.CodeInvalidFee, "fee rate %d must be below %d", in.FeeRate, market.Permyriad)
	}
	for _, t := range in.Treasuries {
		if t.Rate > market.Permyriad {
			return Plan{}, market.Validation(market.CodeFeeConfigInvalid, "treasury %q rate %d above %d", t.Recipient, t.Rate, market.Permyriad)
		}
	}

	royalty := MulDiv(in.Gross, in.Royalty.BasisPoints, market.BasisPoints)
	fee := MulDiv(in.Gross, in.FeeRate, market.Permyriad)
	if royalty > in.Gross-fee {
		return Plan{}, market.Validation(market.CodeFeeExceedsGross,
			"royalty %d plus platform fee %d exceed gross %d", royalty, fee, in.Gross)
	}

	plan := Plan{
		Gross:        in.Gross,
		RoyaltyTotal: royalty,
		PlatformFee:  fee,
		SellerNet:    in.Gross - royalty - fee,
	}
	plan.Payouts = append(plan.Payouts, market.Payout{Role: market.RoleSeller, Recipient: in.Seller, Amount: plan.SellerNet})
	for _, t := range in.Treasuries {
		plan.Payouts = append(plan.Payouts, market.Payout{
			Role:      market.RoleTreasury,
			Recipient: t.Recipient,
			Amount:    MulDiv(fee, t.Rate, market.Permyriad),
		})
	}
	for _, c := range in.Royalty.Creators {
		if !c.Verified || c.Share == 0 {
			continue
		}
		plan.Payouts = append(plan.Payouts, market.Payout{
			Role:      market.RoleCreator,
			Recipient: c.Address,
			Amount:    MulDiv(royalty, c.Share, market.PercentBase),
		})
	}
	return plan, nil
}

// ValidateRoyalty rejects malformed creator data.
func ValidateRoyalty(ri market.RoyaltyInfo) error {
	if len(ri.Creators) == 0 {
		return market.Validation(market.CodeCreatorParse, "metadata declares no creators")
	}
	if ri.BasisPoints > market.BasisPoints {
		return market.Validation(market.CodeInvalidRoyalty, "royalty %d bps above %d", ri.BasisPoints, market.BasisPoints)
	}
	var shares uint64
	for _, c := range ri.Creators {
		if c.Address == "" {
			return market.Validation(market.CodeCreatorParse, "creator without address")
		}
		if c.Share > market.PercentBase {
			return market.Validation(market.CodeInvalidRoyalty, "creator %q share %d above %d", c.Address, c.Share, market.PercentBase)
		}
		shares += c.Share
	}
	if shares > market.PercentBase {
		return market.Validation(market.CodeInvalidRoyalty, "creator shares sum to %d, above %d", shares, market.PercentBase)
	}
	return nil
}

// MulDiv returns floor(a*b/c) using a 128-bit intermediate product.
// With b <= c the quotient always fits; otherwise a quotient above
// MaxUint64 saturates. c must be positive.
func MulDiv(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, c)
	return q
}
