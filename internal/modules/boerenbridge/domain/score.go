package domain

// ScoreRules parametrizes the round scoring formula. The rule set is
// configurable because the penalty/bonus weights are house rules; the
// defaults are the classic ones.
type ScoreRules struct {
	ExactBase     int `json:"exact_base"`      // flat bonus for hitting the bet exactly
	ExactPerTrick int `json:"exact_per_trick"` // extra per trick won on an exact bet
	MissPerTrick  int `json:"miss_per_trick"`  // penalty per trick off the bet
}

// DefaultScoreRules returns the standard scoring:
// exact bet = 10 + 2*wins, miss = -2*|wins-bet|.
func DefaultScoreRules() ScoreRules {
	return ScoreRules{ExactBase: 10, ExactPerTrick: 2, MissPerTrick: 2}
}

// RoundDelta computes the score change for one player given their bet
// and the tricks they actually won.
func (r ScoreRules) RoundDelta(bet, wins int) int {
	diff := wins - bet
	if diff == 0 {
		return r.ExactBase + r.ExactPerTrick*wins
	}
	if diff < 0 {
		diff = -diff
	}
	return -r.MissPerTrick * diff
}
