package progress

import (
	"fmt"
	"strconv"
	"time"
)

// DeckProgress is the persisted best/aggregate record for one user and one deck.
type DeckProgress struct {
	DeckID        string    `json:"deckId"`
	BestScore     int       `json:"bestScore"`
	BestTotal     int       `json:"bestTotal"`
	LastScore     int       `json:"lastScore"`
	LastTotal     int       `json:"lastTotal"`
	Attempts      int       `json:"attempts"`
	TotalCorrect  int       `json:"totalCorrect"`
	TotalAnswered int       `json:"totalAnswered"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Hash field names for the stored record.
const (
	fieldDeckID        = "deckId"
	fieldBestScore     = "bestScore"
	fieldBestTotal     = "bestTotal"
	fieldLastScore     = "lastScore"
	fieldLastTotal     = "lastTotal"
	fieldAttempts      = "attempts"
	fieldTotalCorrect  = "totalCorrect"
	fieldTotalAnswered = "totalAnswered"
	fieldLastUpdated   = "lastUpdated"
)

// decodeDeckProgress converts a raw Redis hash into a typed DeckProgress.
// Absent fields default to zero; a field that is present but not numeric
// makes the whole record invalid. All coercion happens here so consumers
// only ever see typed records.
func decodeDeckProgress(fields map[string]string) (*DeckProgress, error) {
	p := &DeckProgress{DeckID: fields[fieldDeckID]}

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{fieldBestScore, &p.BestScore},
		{fieldBestTotal, &p.BestTotal},
		{fieldLastScore, &p.LastScore},
		{fieldLastTotal, &p.LastTotal},
		{fieldAttempts, &p.Attempts},
		{fieldTotalCorrect, &p.TotalCorrect},
		{fieldTotalAnswered, &p.TotalAnswered},
	} {
		raw, ok := fields[f.name]
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s=%q", ErrMalformedRecord, f.name, raw)
		}
		*f.dst = n
	}

	if raw, ok := fields[fieldLastUpdated]; ok && raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s=%q", ErrMalformedRecord, fieldLastUpdated, raw)
		}
		p.LastUpdated = t
	}

	return p, nil
}

// encodeDeckProgress produces the full hash payload for a first-attempt write.
func encodeDeckProgress(p *DeckProgress) map[string]interface{} {
	return map[string]interface{}{
		fieldDeckID:        p.DeckID,
		fieldBestScore:     p.BestScore,
		fieldBestTotal:     p.BestTotal,
		fieldLastScore:     p.LastScore,
		fieldLastTotal:     p.LastTotal,
		fieldAttempts:      p.Attempts,
		fieldTotalCorrect:  p.TotalCorrect,
		fieldTotalAnswered: p.TotalAnswered,
		fieldLastUpdated:   p.LastUpdated.Format(time.RFC3339Nano),
	}
}
