package progress

// RequiredCorrectCards is the number of distinct cards a user must have
// answered correctly before card authoring unlocks.
const RequiredCorrectCards = 20

// EligibilitySnapshot is the derived gating value. It is never persisted;
// it is recomputed from the live correct-card count on every change.
type EligibilitySnapshot struct {
	Count    int  `json:"count"`
	Required int  `json:"required"`
	Eligible bool `json:"eligible"`
}

// DeriveEligibility is a pure threshold test, inclusive at exactly
// RequiredCorrectCards. Monotonicity of the result follows from the
// monotonicity of the count, not from anything this function does.
func DeriveEligibility(count int) EligibilitySnapshot {
	return EligibilitySnapshot{
		Count:    count,
		Required: RequiredCorrectCards,
		Eligible: count >= RequiredCorrectCards,
	}
}
