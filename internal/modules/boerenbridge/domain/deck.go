package domain

import "sort"

// MinRank returns the lowest rank included in the deck for the given
// player count. Fewer players means a smaller deck, so hands stay a
// reasonable fraction of the stock.
func MinRank(nrPlayers int) Rank {
	switch {
	case nrPlayers <= 4:
		return Seven // 32 cards
	case nrPlayers == 5:
		return Five // 40 cards
	case nrPlayers == 6:
		return Three // 48 cards
	default:
		return Two // 52 cards
	}
}

// MaxHandSize returns the peak hand size of the ladder for nrPlayers:
// the full NrRounds/2 when the stock allows it, otherwise as many
// cards as the stock can deal to every seat.
func MaxHandSize(nrPlayers int) int {
	peak := DeckSize(nrPlayers) / nrPlayers
	if peak > NrRounds/2 {
		peak = NrRounds / 2
	}
	return peak
}

// DeckSize returns the stock size for nrPlayers without building it.
func DeckSize(nrPlayers int) int {
	return NrSuits * int(Ace-MinRank(nrPlayers)+1)
}

// NewDeck builds the full stock for a game with nrPlayers players:
// every suit/rank combination with rank >= MinRank(nrPlayers).
// Deterministic; shuffling happens at deal time.
func NewDeck(nrPlayers int) []Card {
	min := MinRank(nrPlayers)
	deck := make([]Card, 0, DeckSize(nrPlayers))
	for s := Clubs; s <= Hearts; s++ {
		for r := min; r <= Ace; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// sortHand orders a hand canonically: by suit, then descending rank
// within each suit.
func sortHand(hand []Card) {
	sort.Slice(hand, func(i, j int) bool {
		if hand[i].Suit != hand[j].Suit {
			return hand[i].Suit < hand[j].Suit
		}
		return hand[i].Rank > hand[j].Rank
	})
}
