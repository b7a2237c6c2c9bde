package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/roach88/bourse/internal/market"
)

// Args are the named arguments of an operation invoked by name, as
// decoded from JSON (with UseNumber) or YAML.
type Args map[string]any

// bound is an operation with its arguments already decoded.
type bound func(ctx context.Context, e *Engine) (*Receipt, error)

// binder decodes an operation's arguments. Decoding problems are
// collected on the reader and checked before the operation runs.
type binder func(r *argReader) bound

var binders = map[string]binder{
	"initialize": func(r *argReader) bound {
		admin := r.str("admin")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.Initialize(ctx, admin) }
	},
	"set_fee": func(r *argReader) bound {
		caller, rate := r.str("caller"), r.uint("rate")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.SetFee(ctx, caller, rate) }
	},
	"add_treasury": func(r *argReader) bound {
		caller, recipient, rate := r.str("caller"), r.str("recipient"), r.uint("rate")
		return func(ctx context.Context, e *Engine) (*Receipt, error) {
			return e.AddTreasury(ctx, caller, recipient, rate)
		}
	},
	"remove_treasury": func(r *argReader) bound {
		caller, recipient := r.str("caller"), r.str("recipient")
		return func(ctx context.Context, e *Engine) (*Receipt, error) {
			return e.RemoveTreasury(ctx, caller, recipient)
		}
	},
	"init_user": func(r *argReader) bound {
		owner := r.str("owner")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.InitUser(ctx, owner) }
	},
	"deposit": func(r *argReader) bound {
		owner, amount := r.str("owner"), r.uint("amount")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.Deposit(ctx, owner, amount) }
	},
	"withdraw": func(r *argReader) bound {
		owner, amount := r.str("owner"), r.uint("amount")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.Withdraw(ctx, owner, amount) }
	},
	"list": func(r *argReader) bound {
		item, seller, price := r.str("item"), r.str("seller"), r.uint("price")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.List(ctx, item, seller, price) }
	},
	"delist": func(r *argReader) bound {
		item, seller := r.str("item"), r.str("seller")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.Delist(ctx, item, seller) }
	},
	"delist_to": func(r *argReader) bound {
		item, seller, receiver := r.str("item"), r.str("seller"), r.str("receiver")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.DelistTo(ctx, item, seller, receiver) }
	},
	"set_price": func(r *argReader) bound {
		item, seller, price := r.str("item"), r.str("seller"), r.uint("price")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.SetPrice(ctx, item, seller, price) }
	},
	"purchase": func(r *argReader) bound {
		item, buyer, payees := r.str("item"), r.str("buyer"), r.strs("payees")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.Purchase(ctx, item, buyer, payees) }
	},
	"make_offer": func(r *argReader) bound {
		item, buyer, price := r.str("item"), r.str("buyer"), r.uint("price")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.MakeOffer(ctx, item, buyer, price) }
	},
	"cancel_offer": func(r *argReader) bound {
		item, buyer := r.str("item"), r.str("buyer")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.CancelOffer(ctx, item, buyer) }
	},
	"accept_offer": func(r *argReader) bound {
		item, seller, buyer, payees := r.str("item"), r.str("seller"), r.str("buyer"), r.strs("payees")
		return func(ctx context.Context, e *Engine) (*Receipt, error) {
			return e.AcceptOffer(ctx, item, seller, buyer, payees)
		}
	},
	"create_auction": func(r *argReader) bound {
		p := AuctionParams{
			Item:         r.str("item"),
			Creator:      r.str("creator"),
			StartPrice:   r.uint("start_price"),
			MinIncrement: r.uint("min_increment"),
			Duration:     r.int("duration"),
			Reserved:     r.bool("reserved"),
		}
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.CreateAuction(ctx, p) }
	},
	"place_bid": func(r *argReader) bound {
		item, bidder, outbidder, price := r.str("item"), r.str("bidder"), r.str("expected_outbidder"), r.uint("price")
		return func(ctx context.Context, e *Engine) (*Receipt, error) {
			return e.PlaceBid(ctx, item, bidder, outbidder, price)
		}
	},
	"update_reserve": func(r *argReader) bound {
		item, creator, price := r.str("item"), r.str("creator"), r.uint("price")
		return func(ctx context.Context, e *Engine) (*Receipt, error) {
			return e.UpdateReserve(ctx, item, creator, price)
		}
	},
	"cancel_auction": func(r *argReader) bound {
		item, creator := r.str("item"), r.str("creator")
		return func(ctx context.Context, e *Engine) (*Receipt, error) { return e.CancelAuction(ctx, item, creator) }
	},
	"claim_auction": func(r *argReader) bound {
		item, creator, bidder, payees := r.str("item"), r.str("creator"), r.str("bidder"), r.strs("payees")
		return func(ctx context.Context, e *Engine) (*Receipt, error) {
			return e.ClaimAuction(ctx, item, creator, bidder, payees)
		}
	},
}

// OperationNames returns every operation Invoke accepts, sorted.
func OperationNames() []string {
	names := make([]string, 0, len(binders))
	for name := range binders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs an operation by name. Missing arguments take their zero
// value; arguments of the wrong type are a validation error.
func (e *Engine) Invoke(ctx context.Context, op string, args Args) (*Receipt, error) {
	bind, ok := binders[op]
	if !ok {
		return nil, market.Validation(market.CodeUnknownOperation, "unknown operation %q", op)
	}
	r := &argReader{args: args}
	run := bind(r)
	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", op, r.err)
	}
	return run(ctx, e)
}

// argReader decodes typed arguments, keeping the first problem it meets.
type argReader struct {
	args Args
	err  error
}

func (r *argReader) fail(key, format string, a ...any) {
	if r.err == nil {
		r.err = market.Validation(market.CodeInvalidArgument, "argument %q: %s", key, fmt.Sprintf(format, a...))
	}
}

func (r *argReader) str(key string) string {
	v, ok := r.args[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, "expected string, got %T", v)
	}
	return s
}

func (r *argReader) bool(key string) bool {
	v, ok := r.args[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(key, "expected bool, got %T", v)
	}
	return b
}

func (r *argReader) uint(key string) uint64 {
	v, ok := r.args[key]
	if !ok || v == nil {
		return 0
	}
	var s string
	switch n := v.(type) {
	case uint64:
		return n
	case int:
		s = strconv.Itoa(n)
	case int64:
		s = strconv.FormatInt(n, 10)
	case json.Number:
		s = n.String()
	case string:
		s = n
	default:
		r.fail(key, "expected unsigned integer, got %T", v)
		return 0
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		r.fail(key, "expected unsigned integer, got %q", s)
	}
	return u
}

func (r *argReader) int(key string) int64 {
	v, ok := r.args[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case uint64:
		if n > math.MaxInt64 {
			r.fail(key, "out of range")
			return 0
		}
		return int64(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			r.fail(key, "expected integer, got %q", n.String())
		}
		return i
	default:
		r.fail(key, "expected integer, got %T", v)
		return 0
	}
}

func (r *argReader) strs(key string) []string {
	v, ok := r.args[key]
	if !ok || v == nil {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, len(list))
		for i, elem := range list {
			s, ok := elem.(string)
			if !ok {
				r.fail(key, "element %d: expected string, got %T", i, elem)
				return nil
			}
			out[i] = s
		}
		return out
	default:
		r.fail(key, "expected list of strings, got %T", v)
		return nil
	}
}
