package deck

import "time"

// Card is one multiple-choice flashcard inside a deck.
type Card struct {
	ID           string    `json:"id"`
	Index        int       `json:"index"`
	Question     string    `json:"question"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correctIndex"`
	Explanation  string    `json:"explanation,omitempty"`
	Approved     bool      `json:"approved"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// OptionCount is the fixed number of answer options per card.
const OptionCount = 3
