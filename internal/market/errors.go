package market

import (
	"errors"
	"fmt"
)

// Kind is the coarse category of a rejected operation.
type Kind string

const (
	// KindAuthorization indicates the caller does not hold the required role.
	KindAuthorization Kind = "authorization"

	// KindState indicates the record is not in a state that permits the operation.
	KindState Kind = "state"

	// KindValidation indicates a bad argument.
	KindValidation Kind = "validation"

	// KindConsistency indicates supplied references disagree with stored state.
	KindConsistency Kind = "consistency"

	// KindInsufficientFunds indicates an escrow or rail balance is too low.
	KindInsufficientFunds Kind = "insufficient_funds"
)

// Code is the stable discriminant of a rejected operation.
type Code string

const (
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeSellerMismatch   Code = "SELLER_MISMATCH"
	CodeCreatorMismatch  Code = "CREATOR_MISMATCH"
	CodeBidderMismatch   Code = "BIDDER_MISMATCH"
	CodeSelfTrade        Code = "SELF_TRADE"
	CodeBidFromCreator   Code = "BID_FROM_CREATOR"
	CodeDoubleBid        Code = "DOUBLE_BID"
	CodeItemNotHeld      Code = "ITEM_NOT_HELD"
	CodeItemNotInCustody Code = "ITEM_NOT_IN_CUSTODY"

	CodeNotInitialized     Code = "NOT_INITIALIZED"
	CodeAlreadyInitialized Code = "ALREADY_INITIALIZED"
	CodeAccountNotFound    Code = "ACCOUNT_NOT_FOUND"
	CodeAccountExists      Code = "ACCOUNT_EXISTS"
	CodeNotListed          Code = "NOT_LISTED"
	CodeAlreadyListed      Code = "ALREADY_LISTED"
	CodeAuctionRunning     Code = "AUCTION_RUNNING"
	CodeAuctionActive      Code = "AUCTION_ACTIVE"
	CodeAuctionNotFound    Code = "AUCTION_NOT_FOUND"
	CodeAuctionNotRunning  Code = "AUCTION_NOT_RUNNING"
	CodeNotReserved        Code = "NOT_RESERVED"
	CodeAuctionEnded       Code = "AUCTION_ENDED"
	CodeAuctionNotEnded    Code = "AUCTION_NOT_ENDED"
	CodeAuctionHasBid      Code = "AUCTION_HAS_BID"
	CodeNoBid              Code = "NO_BID"
	CodeOfferExists        Code = "OFFER_EXISTS"
	CodeOfferInactive      Code = "OFFER_INACTIVE"
	CodeOfferExpired       Code = "OFFER_EXPIRED"
	CodeNoTreasury         Code = "NO_TREASURY"

	CodeInvalidAmount     Code = "INVALID_AMOUNT"
	CodeInvalidFee        Code = "INVALID_FEE"
	CodeFeeConfigInvalid  Code = "FEE_CONFIG_INVALID"
	CodeTreasuryNotFound  Code = "TREASURY_NOT_FOUND"
	CodeInvalidOfferPrice Code = "INVALID_OFFER_PRICE"
	CodeInvalidBidPrice   Code = "INVALID_BID_PRICE"
	CodeInvalidAuction    Code = "INVALID_AUCTION"
	CodeCreatorParse      Code = "CREATOR_PARSE"
	CodeInvalidRoyalty    Code = "INVALID_ROYALTY"
	CodeFeeExceedsGross   Code = "FEE_EXCEEDS_GROSS"
	CodeUnknownOperation  Code = "UNKNOWN_OPERATION"
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"

	CodePayeeCountMismatch Code = "PAYEE_COUNT_MISMATCH"
	CodePayeeMismatch      Code = "PAYEE_MISMATCH"
	CodeOutbidderMismatch  Code = "OUTBIDDER_MISMATCH"

	CodeInsufficientEscrow Code = "INSUFFICIENT_ESCROW"
	CodeInsufficientRail   Code = "INSUFFICIENT_RAIL_FUNDS"
)

// Error is a rejected operation. No record was changed.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches another *Error by code, so errors.Is(err, &Error{Code: c}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy of e with an extra detail attached.
func (e *Error) With(key, value string) *Error {
	out := *e
	out.Details = make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		out.Details[k] = v
	}
	out.Details[key] = value
	return &out
}

func newError(kind Kind, code Code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Authorization creates an authorization error.
func Authorization(code Code, format string, args ...any) *Error {
	return newError(KindAuthorization, code, format, args...)
}

// State creates a state error.
func State(code Code, format string, args ...any) *Error {
	return newError(KindState, code, format, args...)
}

// Validation creates a validation error.
func Validation(code Code, format string, args ...any) *Error {
	return newError(KindValidation, code, format, args...)
}

// Consistency creates a consistency error.
func Consistency(code Code, format string, args ...any) *Error {
	return newError(KindConsistency, code, format, args...)
}

// InsufficientFunds creates an insufficient funds error.
func InsufficientFunds(code Code, format string, args ...any) *Error {
	return newError(KindInsufficientFunds, code, format, args...)
}

// AsError extracts the *Error from err, handling wrapped errors.
func AsError(err error) (*Error, bool) {
	var me *Error
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// IsKind reports whether err is a rejected operation of the given kind.
func IsKind(err error, kind Kind) bool {
	me, ok := AsError(err)
	return ok && me.Kind == kind
}

// IsCode reports whether err is a rejected operation with the given code.
func IsCode(err error, code Code) bool {
	me, ok := AsError(err)
	return ok && me.Code == code
}

// Collaborator sentinels. Payment rails, custody and metadata adapters
// wrap these so the engine can classify their failures.
var (
	// ErrInsufficientFunds is returned by a payment rail when the source
	// account cannot cover a transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotHolder is returned by custody when an item is not held by the
	// expected party.
	ErrNotHolder = errors.New("item not held by party")

	// ErrUnknownItem is returned by a metadata registry for an item it has
	// no record of.
	ErrUnknownItem = errors.New("unknown item")

	// ErrMissingCreators is returned by a metadata registry when an item's
	// metadata declares no creators.
	ErrMissingCreators = errors.New("metadata has no creators")
)
