package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/market"
)

// Scenario is one marketplace test case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Registry, when present, is initialized before the first step.
	Registry *RegistrySetup `yaml:"registry,omitempty"`

	// Accounts are opened in order after the registry.
	Accounts []AccountSetup `yaml:"accounts,omitempty"`

	// Items are minted and given royalty metadata.
	Items []ItemSetup `yaml:"items,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// RegistrySetup initializes the registry.
type RegistrySetup struct {
	Admin      string            `yaml:"admin"`
	FeeRate    uint64            `yaml:"fee_rate"`
	Treasuries []market.Treasury `yaml:"treasuries"`
}

// AccountSetup opens an escrow account. A positive Escrow is funded on
// the rail and deposited.
type AccountSetup struct {
	Owner  string `yaml:"owner"`
	Escrow uint64 `yaml:"escrow,omitempty"`
}

// ItemSetup mints an item to Holder.
type ItemSetup struct {
	Item    string             `yaml:"item"`
	Holder  string             `yaml:"holder"`
	Royalty market.RoyaltyInfo `yaml:"royalty"`
}

// Step is one action of a scenario. Exactly one of Op, Advance,
// FailRail, HealRail or Resume is set.
type Step struct {
	// Op is an operation name accepted by engine.Invoke.
	Op   string         `yaml:"op,omitempty"`
	Args map[string]any `yaml:"args,omitempty"`

	// Expect describes the outcome. Nil means the op must succeed.
	Expect *Expect `yaml:"expect,omitempty"`

	// Advance moves the clock forward by this many seconds.
	Advance int64 `yaml:"advance,omitempty"`

	// FailRail makes rail transfers into this account fail.
	FailRail string `yaml:"fail_rail,omitempty"`

	// HealRail clears a FailRail.
	HealRail string `yaml:"heal_rail,omitempty"`

	// Resume re-drives pending journal effects.
	Resume bool `yaml:"resume,omitempty"`
}

// Expect is the expected outcome of an op step.
type Expect struct {
	// Code is the expected rejection code. Empty means success.
	Code string `yaml:"code,omitempty"`

	// Settlement fields are checked when set.
	Settlement *ExpectSettlement `yaml:"settlement,omitempty"`

	// Pending is the expected number of this operation's effects left
	// undelivered.
	Pending *int `yaml:"pending,omitempty"`
}

// ExpectSettlement is a subset match on a settlement.
type ExpectSettlement struct {
	Gross        *uint64 `yaml:"gross,omitempty"`
	RoyaltyTotal *uint64 `yaml:"royalty_total,omitempty"`
	PlatformFee  *uint64 `yaml:"platform_fee,omitempty"`
	SellerNet    *uint64 `yaml:"seller_net,omitempty"`
}

// Assertion checks the market after the last step.
type Assertion struct {
	Type string `yaml:"type"`

	Owner   string `yaml:"owner,omitempty"`
	Account string `yaml:"account,omitempty"`
	Item    string `yaml:"item,omitempty"`
	Holder  string `yaml:"holder,omitempty"`
	Status  string `yaml:"status,omitempty"`

	Amount *uint64 `yaml:"amount,omitempty"`
	Active *bool   `yaml:"active,omitempty"`
	Count  *int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertEscrow         = "escrow"
	AssertRailBalance    = "rail_balance"
	AssertHolder         = "holder"
	AssertListing        = "listing"
	AssertAuction        = "auction"
	AssertPendingEffects = "pending_effects"
	AssertSettlements    = "settlements"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Registry != nil && s.Registry.Admin == "" {
		return fmt.Errorf("registry: admin is required")
	}
	for i, a := range s.Accounts {
		if a.Owner == "" {
			return fmt.Errorf("accounts[%d]: owner is required", i)
		}
	}
	for i, it := range s.Items {
		if it.Item == "" || it.Holder == "" {
			return fmt.Errorf("items[%d]: item and holder are required", i)
		}
	}

	known := make(map[string]bool)
	for _, name := range engine.OperationNames() {
		known[name] = true
	}
	for i, step := range s.Steps {
		if err := validateStep(step, known); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step, known map[string]bool) error {
	actions := 0
	for _, set := range []bool{step.Op != "", step.Advance != 0, step.FailRail != "", step.HealRail != "", step.Resume} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return fmt.Errorf("exactly one of op, advance, fail_rail, heal_rail or resume is required")
	}

	if step.Op == "" {
		if step.Args != nil || step.Expect != nil {
			return fmt.Errorf("args and expect apply only to op steps")
		}
		if step.Advance < 0 {
			return fmt.Errorf("advance must be positive")
		}
		return nil
	}
	if !known[step.Op] {
		return fmt.Errorf("unknown operation %q", step.Op)
	}
	if e := step.Expect; e != nil && e.Code != "" && (e.Settlement != nil || e.Pending != nil) {
		return fmt.Errorf("expect: a rejected op has no settlement or effects")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("type is required")
	case AssertEscrow:
		if a.Owner == "" || a.Amount == nil {
			return fmt.Errorf("owner and amount are required for escrow")
		}
	case AssertRailBalance:
		if a.Account == "" || a.Amount == nil {
			return fmt.Errorf("account and amount are required for rail_balance")
		}
	case AssertHolder:
		if a.Item == "" || a.Holder == "" {
			return fmt.Errorf("item and holder are required for holder")
		}
	case AssertListing:
		if a.Item == "" || a.Active == nil {
			return fmt.Errorf("item and active are required for listing")
		}
	case AssertAuction:
		if a.Item == "" {
			return fmt.Errorf("item is required for auction")
		}
		if _, ok := market.ParseAuctionStatus(a.Status); !ok {
			return fmt.Errorf("unknown auction status %q", a.Status)
		}
	case AssertPendingEffects:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("non-negative count is required for pending_effects")
		}
	case AssertSettlements:
		if a.Item == "" || a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("item and non-negative count are required for settlements")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
