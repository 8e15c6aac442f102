package domain

import "fmt"

// resolveTrick determines the winning seat of a completed trick.
//
// The candidate starts as the leader's card. Every other card beats the
// running winner if it has the same suit and a higher rank, or if it is
// the first trump against a non-trump winner. When both are trump the
// higher rank wins. Ranks are unique within a suit, so ties cannot occur.
func resolveTrick(table []PlayedCard, leader int, trump Suit) (int, error) {
	if leader < 0 || leader >= len(table) {
		return -1, fmt.Errorf("%w: leader seat %d out of range", ErrCorruptState, leader)
	}
	for _, pc := range table {
		if pc.Card == nil {
			return -1, fmt.Errorf("%w: trick resolved with empty slot for seat %d", ErrCorruptState, pc.Seat)
		}
	}

	winning := table[leader]
	for _, pc := range table {
		if pc.Card.Suit == winning.Card.Suit {
			if pc.Card.Rank > winning.Card.Rank {
				winning = pc
			}
			continue
		}
		if pc.Card.Suit != trump {
			continue
		}
		// Off-suit trump: first trump beats any non-trump winner,
		// trump against trump is decided on rank above.
		if winning.Card.Suit != trump {
			winning = pc
		}
	}
	return winning.Seat, nil
}
