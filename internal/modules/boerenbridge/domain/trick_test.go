package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func table(cards ...Card) []PlayedCard {
	t := make([]PlayedCard, len(cards))
	for i := range cards {
		c := cards[i]
		t[i] = PlayedCard{Seat: i, Card: &c}
	}
	return t
}

func TestResolveTrickTrumpProgression(t *testing.T) {
	// Lead 7C, trump Hearts. KC beats on rank, 2H trumps the KC,
	// AH out-trumps the 2H.
	trick := table(
		Card{Suit: Clubs, Rank: Seven},
		Card{Suit: Clubs, Rank: King},
		Card{Suit: Hearts, Rank: Two},
		Card{Suit: Hearts, Rank: Ace},
	)

	winner, err := resolveTrick(trick, 0, Hearts)
	assert.NoError(t, err)
	assert.Equal(t, 3, winner)
}

func TestResolveTrickFollowSuit(t *testing.T) {
	// No trump played: highest card of the led suit wins.
	trick := table(
		Card{Suit: Spades, Rank: Nine},
		Card{Suit: Spades, Rank: Queen},
		Card{Suit: Diamonds, Rank: Ace}, // off-suit, not trump, cannot win
		Card{Suit: Spades, Rank: Ten},
	)

	winner, err := resolveTrick(trick, 0, Hearts)
	assert.NoError(t, err)
	assert.Equal(t, 1, winner)
}

func TestResolveTrickFirstTrumpBeatsLead(t *testing.T) {
	trick := table(
		Card{Suit: Clubs, Rank: Ace},
		Card{Suit: Hearts, Rank: Two},
		Card{Suit: Clubs, Rank: King},
	)

	winner, err := resolveTrick(trick, 0, Hearts)
	assert.NoError(t, err)
	assert.Equal(t, 1, winner)
}

func TestResolveTrickLeaderWinsByDefault(t *testing.T) {
	trick := table(
		Card{Suit: Diamonds, Rank: Eight},
		Card{Suit: Clubs, Rank: Ace},
		Card{Suit: Spades, Rank: Ace},
	)

	winner, err := resolveTrick(trick, 0, Hearts)
	assert.NoError(t, err)
	assert.Equal(t, 0, winner)
}

func TestResolveTrickNonZeroLeader(t *testing.T) {
	trick := table(
		Card{Suit: Clubs, Rank: Ace},    // off-suit, not trump
		Card{Suit: Spades, Rank: Seven}, // seat 1 led
		Card{Suit: Spades, Rank: Jack},
	)

	winner, err := resolveTrick(trick, 1, Hearts)
	assert.NoError(t, err)
	assert.Equal(t, 2, winner)
}

func TestResolveTrickIncomplete(t *testing.T) {
	trick := table(
		Card{Suit: Clubs, Rank: Ace},
		Card{Suit: Spades, Rank: Seven},
	)
	trick[1].Card = nil

	_, err := resolveTrick(trick, 0, Hearts)
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestResolveTrickBadLeader(t *testing.T) {
	trick := table(Card{Suit: Clubs, Rank: Ace})

	_, err := resolveTrick(trick, 5, Hearts)
	assert.ErrorIs(t, err, ErrCorruptState)
}
