package domain

import (
	"fmt"
	"strings"
)

// Player is the per-game state of one seat. Seat is the canonical
// identifier; Label ("P1".."Pn") is display-only.
type Player struct {
	Seat         int    `json:"seat"`
	Label        string `json:"label"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	UserID       int64  `json:"user_id"`
	SignedIn     bool   `json:"signed_in"`
	IsController bool   `json:"is_controller"`
	Score        int    `json:"score"`
	Hand         []Card `json:"hand"`
}

// SeatLabel returns the display label for a seat index, e.g. seat 2 -> "P3".
func SeatLabel(seat int) string {
	return fmt.Sprintf("P%d", seat+1)
}

// NewPlayer creates an empty player for a seat.
func NewPlayer(seat int) *Player {
	label := SeatLabel(seat)
	return &Player{
		Seat:  seat,
		Label: label,
		Name:  label,
		Hand:  []Card{},
	}
}

// FirstName returns the first word of the player's display name.
func (p *Player) FirstName() string {
	if p.Name == "" {
		return ""
	}
	return strings.Split(p.Name, " ")[0]
}

// handIndex returns the position of card in the player's hand, or -1.
func (p *Player) handIndex(card Card) int {
	for i, c := range p.Hand {
		if c.Equal(card) {
			return i
		}
	}
	return -1
}

// removeCard takes card out of the player's hand. Reports false if the
// player does not hold it.
func (p *Player) removeCard(card Card) bool {
	i := p.handIndex(card)
	if i < 0 {
		return false
	}
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	return true
}
