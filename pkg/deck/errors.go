package deck

import "errors"

var (
	// ErrUnknownDeck is returned for a deck ID outside the catalog.
	ErrUnknownDeck = errors.New("unknown deck")

	// ErrCardNotFound is returned when a card does not exist in the deck.
	ErrCardNotFound = errors.New("card not found")

	// ErrNotOwner is returned when a user edits or deletes a card they did
	// not create.
	ErrNotOwner = errors.New("not the card owner")

	// ErrInvalidCard is returned when card content fails validation.
	ErrInvalidCard = errors.New("invalid card")
)
