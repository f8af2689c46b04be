package types

// Match tier vocabulary used by explanation recommendations.
const (
	TierStrongMatch   = "Strong Match"
	TierGoodMatch     = "Good Match"
	TierModerateMatch = "Moderate Match"
	TierWeakMatch     = "Weak Match"
)

// MatchExplanation is the free-text commentary produced for one finished
// score breakdown. Summary is capped at 120 words and TopReasons always
// contains exactly three entries.
type MatchExplanation struct {
	Summary        string   `json:"summary"`
	TopReasons     []string `json:"top_reasons"`
	Recommendation string   `json:"recommendation"`
}
