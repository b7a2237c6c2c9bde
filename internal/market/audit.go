package market

// Operation is one committed engine call in the audit log.
type Operation struct {
	Seq    int64  `json:"seq"`
	ID     string `json:"id"`
	Op     string `json:"op"`
	Item   string `json:"item,omitempty"`
	Caller string `json:"caller"`
	Args   string `json:"args"` // canonical JSON
	At     int64  `json:"at"`
}

// SettlementKind names the sale path that produced a settlement.
type SettlementKind string

const (
	SettlementPurchase SettlementKind = "purchase"
	SettlementOffer    SettlementKind = "offer"
	SettlementAuction  SettlementKind = "auction"
)

// PayoutRole names why a recipient is paid.
type PayoutRole string

const (
	RoleSeller   PayoutRole = "seller"
	RoleTreasury PayoutRole = "treasury"
	RoleCreator  PayoutRole = "creator"
)

// Payout is one transfer of a settlement.
type Payout struct {
	Role      PayoutRole `json:"role"`
	Recipient string     `json:"recipient"`
	Amount    uint64     `json:"amount"`
}

// Settlement is the audit record of one distributed sale.
type Settlement struct {
	ID           string         `json:"id"`
	OperationID  string         `json:"operation_id"`
	Item         string         `json:"item"`
	Kind         SettlementKind `json:"kind"`
	Gross        uint64         `json:"gross"`
	RoyaltyTotal uint64         `json:"royalty_total"`
	PlatformFee  uint64         `json:"platform_fee"`
	SellerNet    uint64         `json:"seller_net"`
	Payouts      []Payout       `json:"payouts"`
	At           int64          `json:"at"`
}

// Paid returns the sum of all payouts.
func (s Settlement) Paid() uint64 {
	var total uint64
	for _, p := range s.Payouts {
		total += p.Amount
	}
	return total
}

// Dust returns the rounding remainder left in the vault.
func (s Settlement) Dust() uint64 {
	return s.Gross - s.Paid()
}

// EffectKind names an external side effect.
type EffectKind string

const (
	EffectLock    EffectKind = "lock"
	EffectRelease EffectKind = "release"
	EffectPayout  EffectKind = "payout"
)

// EffectStatus tracks whether an effect reached its collaborator.
type EffectStatus string

const (
	EffectPending EffectStatus = "pending"
	EffectApplied EffectStatus = "applied"
)

// Effect is one journaled custody move or payment, applied after the
// operation that produced it commits.
//
// Lock moves Item from From into custody. Release moves Item out of
// custody to To. Payout transfers Amount from From to To on the rail.
type Effect struct {
	Seq         int64        `json:"seq"`
	OperationID string       `json:"operation_id"`
	Kind        EffectKind   `json:"kind"`
	Item        string       `json:"item,omitempty"`
	From        string       `json:"from,omitempty"`
	To          string       `json:"to,omitempty"`
	Amount      uint64       `json:"amount,omitempty"`
	Status      EffectStatus `json:"status"`
}
