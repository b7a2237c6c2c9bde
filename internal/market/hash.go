package market

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed ids. The version suffix allows
// the algorithm to change without colliding with old ids.
const (
	DomainSettlement = "bourse/settlement/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SettlementID computes the content-addressed id of a settlement from
// every field except the id itself.
func SettlementID(s Settlement) (string, error) {
	payouts := make([]any, len(s.Payouts))
	for i, p := range s.Payouts {
		payouts[i] = map[string]any{
			"role":      string(p.Role),
			"recipient": p.Recipient,
			"amount":    p.Amount,
		}
	}
	obj := map[string]any{
		"operation_id":  s.OperationID,
		"item":          s.Item,
		"kind":          string(s.Kind),
		"gross":         s.Gross,
		"royalty_total": s.RoyaltyTotal,
		"platform_fee":  s.PlatformFee,
		"seller_net":    s.SellerNet,
		"payouts":       payouts,
		"at":            s.At,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SettlementID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSettlement, canonical), nil
}
