package domain

// NrRounds is the full ladder length, played whenever the stock can
// deal the 1..8..1 palindrome. Rosters of 7 or 8 players play a
// shorter palindrome so every deal fits the stock.
const NrRounds = 16

// BetNotPlaced is the sentinel for a seat that has not bet yet.
const BetNotPlaced = -1

// PlayedCard is one table slot: the card a seat played into the
// current trick. Card is nil until the seat has played.
type PlayedCard struct {
	Seat   int   `json:"seat"`
	Card   *Card `json:"card"`
	Winner bool  `json:"winner"`
}

// Round holds all per-round state: the bets, the tricks won, the score
// snapshot taken when the round resolves, the trump in effect and the
// full trick history for replay.
type Round struct {
	HandSize int             `json:"hand_size"`
	Current  bool            `json:"current"`
	Trump    *Card           `json:"trump"`
	Table    []PlayedCard    `json:"table"`
	History  [][]PlayedCard  `json:"history"`
	Bets     []int           `json:"bets"`
	Wins     []int           `json:"wins"`
	Scores   []int           `json:"scores"`
	Winners  []bool          `json:"winners"`
}

// NewRound creates a fresh round for handSize cards per player.
func NewRound(handSize, nrPlayers int) *Round {
	r := &Round{
		HandSize: handSize,
		Bets:     make([]int, nrPlayers),
		Wins:     make([]int, nrPlayers),
		Scores:   make([]int, nrPlayers),
		Winners:  make([]bool, nrPlayers),
		History:  [][]PlayedCard{},
	}
	for i := range r.Bets {
		r.Bets[i] = BetNotPlaced
	}
	r.ResetTable(nrPlayers)
	return r
}

// NewRounds builds the ladder for nrPlayers: hand sizes ascend from 1
// to MaxHandSize(nrPlayers), then descend back to 1 (a palindrome).
// Every round of the ladder satisfies HandSize*nrPlayers <= stock.
func NewRounds(nrPlayers int) []*Round {
	peak := MaxHandSize(nrPlayers)
	rounds := make([]*Round, 2*peak)
	for i := 0; i < peak; i++ {
		rounds[i] = NewRound(i+1, nrPlayers)
		rounds[2*peak-1-i] = NewRound(i+1, nrPlayers)
	}
	return rounds
}

// ResetTable replaces the table with empty slots, one per seat.
func (r *Round) ResetTable(nrPlayers int) {
	table := make([]PlayedCard, nrPlayers)
	for i := range table {
		table[i] = PlayedCard{Seat: i}
	}
	r.Table = table
}

// AllBetsPlaced reports whether every seat has placed a bet.
func (r *Round) AllBetsPlaced() bool {
	for _, b := range r.Bets {
		if b == BetNotPlaced {
			return false
		}
	}
	return true
}

// TableFull reports whether every seat has played into the current trick.
func (r *Round) TableFull() bool {
	for _, pc := range r.Table {
		if pc.Card == nil {
			return false
		}
	}
	return true
}

// winnerSeat returns the seat flagged as trick winner, or -1.
func (r *Round) winnerSeat() int {
	for _, pc := range r.Table {
		if pc.Winner {
			return pc.Seat
		}
	}
	return -1
}
