package market

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchingThroughWrap(t *testing.T) {
	err := fmt.Errorf("accept_offer: %w", State(CodeOfferExpired, "listing epoch %d != %d", 1, 2))

	assert.True(t, IsKind(err, KindState))
	assert.True(t, IsCode(err, CodeOfferExpired))
	assert.False(t, IsCode(err, CodeOfferInactive))
	assert.True(t, errors.Is(err, &Error{Code: CodeOfferExpired}))
	assert.Equal(t, "accept_offer: OFFER_EXPIRED: listing epoch 1 != 2", err.Error())
}

func TestErrorWithCopiesDetails(t *testing.T) {
	base := Validation(CodeInvalidAmount, "amount must be positive")
	withAmount := base.With("amount", "0")

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"amount": "0"}, withAmount.Details)
}

func TestIsKindOnPlainError(t *testing.T) {
	assert.False(t, IsKind(errors.New("disk full"), KindState))
	_, ok := AsError(nil)
	assert.False(t, ok)
}
