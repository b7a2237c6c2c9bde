package market

import "encoding/json"

// SetFee replaces the platform fee rate.
func (r *Registry) SetFee(rate uint64) error {
	if rate >= Permyriad {
		return Validation(CodeInvalidFee, "fee rate %d must be below %d", rate, Permyriad)
	}
	r.FeeRate = rate
	return nil
}

// AddTreasury appends a treasury. The registry is unchanged on error.
func (r *Registry) AddTreasury(recipient string, rate uint64) error {
	if recipient == "" {
		return Validation(CodeFeeConfigInvalid, "treasury recipient is empty")
	}
	if r.TreasuryCount >= MaxTreasuries {
		return Validation(CodeFeeConfigInvalid, "at most %d treasuries", MaxTreasuries)
	}
	if rate == 0 || rate > Permyriad {
		return Validation(CodeFeeConfigInvalid, "treasury rate %d outside (0, %d]", rate, Permyriad)
	}
	if r.treasuryIndex(recipient) >= 0 {
		return Validation(CodeFeeConfigInvalid, "treasury %q already added", recipient)
	}
	if r.RateSum()+rate > Permyriad {
		return Validation(CodeFeeConfigInvalid, "treasury rates would sum to %d, above %d", r.RateSum()+rate, Permyriad)
	}
	r.Treasuries[r.TreasuryCount] = Treasury{Recipient: recipient, Rate: rate}
	r.TreasuryCount++
	return nil
}

// RemoveTreasury deletes a treasury by moving the last slot into its place.
func (r *Registry) RemoveTreasury(recipient string) error {
	if r.TreasuryCount == 0 {
		return State(CodeNoTreasury, "no treasury configured")
	}
	i := r.treasuryIndex(recipient)
	if i < 0 {
		return State(CodeTreasuryNotFound, "treasury %q not found", recipient)
	}
	last := r.TreasuryCount - 1
	r.Treasuries[i] = r.Treasuries[last]
	r.Treasuries[last] = Treasury{}
	r.TreasuryCount--
	return nil
}

// RateSum returns the sum of all configured treasury rates.
func (r Registry) RateSum() uint64 {
	var sum uint64
	for _, t := range r.Treasuries[:r.TreasuryCount] {
		sum += t.Rate
	}
	return sum
}

func (r Registry) treasuryIndex(recipient string) int {
	for i, t := range r.Treasuries[:r.TreasuryCount] {
		if t.Recipient == recipient {
			return i
		}
	}
	return -1
}

type registryJSON struct {
	Admin      string     `json:"admin"`
	FeeRate    uint64     `json:"fee_rate"`
	Treasuries []Treasury `json:"treasuries"`
}

// MarshalJSON emits only the configured treasuries.
func (r Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(registryJSON{
		Admin:      r.Admin,
		FeeRate:    r.FeeRate,
		Treasuries: r.ActiveTreasuries(),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var raw registryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Registry{Admin: raw.Admin, FeeRate: raw.FeeRate}
	for _, t := range raw.Treasuries {
		if err := out.AddTreasury(t.Recipient, t.Rate); err != nil {
			return err
		}
	}
	*r = out
	return nil
}
