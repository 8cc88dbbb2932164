package progress

import "errors"

var (
	// ErrInvalidAttempt is returned when an attempt does not satisfy
	// 0 <= score <= total. Rejecting it up front keeps an impossible
	// percentage from permanently occupying the best slot.
	ErrInvalidAttempt = errors.New("invalid attempt")

	// ErrUnknownDeck is returned for a deck ID outside the configured catalog.
	ErrUnknownDeck = errors.New("unknown deck")

	// ErrInvalidCard is returned when a correct-card mark has an empty card ID.
	ErrInvalidCard = errors.New("invalid card")

	// ErrMalformedRecord is returned when a stored record fails strict decoding.
	ErrMalformedRecord = errors.New("malformed progress record")
)
