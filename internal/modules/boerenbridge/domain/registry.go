package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RegistryState is the lifecycle of a game registry.
type RegistryState int

const (
	RegistryStateNoGame      RegistryState = 0 // roster exists, no live game
	RegistryStateGameCreated RegistryState = 1 // a live game was created from this roster
)

// GameRegistry is the durable roster a game is created from: the game
// name, its competition, and who sits in which seat. Registries
// outlive individual games; "new game set" rebuilds the live game from
// the same registry.
type GameRegistry struct {
	ID            string           `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name          string           `gorm:"uniqueIndex;type:varchar(64);not null" json:"name"`
	CompetitionID string           `gorm:"type:varchar(64)" json:"competition_id"`
	State         RegistryState    `gorm:"type:int;not null;default:0" json:"state"`
	Players       []RegistryPlayer `gorm:"foreignKey:RegistryID;constraint:OnDelete:CASCADE" json:"players"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName overrides the table name.
func (GameRegistry) TableName() string {
	return "game_registries"
}

// RegistryPlayer binds a seat of a registry to a player email. The
// first seat defaults to game admin.
type RegistryPlayer struct {
	RegistryID string `gorm:"primaryKey;type:varchar(64)" json:"registry_id"`
	Seat       int    `gorm:"primaryKey" json:"seat"`
	Label      string `gorm:"type:varchar(8);not null" json:"label"`
	Email      string `gorm:"type:varchar(256)" json:"email"`
	IsAdmin    bool   `gorm:"not null;default:false" json:"is_admin"`
}

// TableName overrides the table name.
func (RegistryPlayer) TableName() string {
	return "registry_players"
}

// NewGameRegistry creates a registry with nrPlayers empty seats.
func NewGameRegistry(name, competitionID string, nrPlayers int) (*GameRegistry, error) {
	if nrPlayers < MinPlayers || nrPlayers > MaxPlayers {
		return nil, fmt.Errorf("%w: expected %d-%d players, got %d", ErrInvalidMove, MinPlayers, MaxPlayers, nrPlayers)
	}
	reg := &GameRegistry{
		ID:            uuid.NewString(),
		Name:          name,
		CompetitionID: competitionID,
		State:         RegistryStateNoGame,
	}
	for seat := 0; seat < nrPlayers; seat++ {
		reg.Players = append(reg.Players, RegistryPlayer{
			RegistryID: reg.ID,
			Seat:       seat,
			Label:      SeatLabel(seat),
			IsAdmin:    seat == 0,
		})
	}
	return reg, nil
}

// Seats converts the roster into seat assignments for NewGame.
func (r *GameRegistry) Seats() []SeatAssignment {
	seats := make([]SeatAssignment, len(r.Players))
	for _, p := range r.Players {
		seats[p.Seat] = SeatAssignment{Email: p.Email, IsController: p.IsAdmin}
	}
	return seats
}

// ShufflePlayers randomizes which email gets which seat. Only allowed
// while no live game exists for this registry.
func (r *GameRegistry) ShufflePlayers(rng *rand.Rand) error {
	if r.State != RegistryStateNoGame {
		return fmt.Errorf("%w: cannot reseat players of a running game", ErrIllegalPhase)
	}
	rng.Shuffle(len(r.Players), func(i, j int) {
		r.Players[i].Email, r.Players[j].Email = r.Players[j].Email, r.Players[i].Email
		r.Players[i].IsAdmin, r.Players[j].IsAdmin = r.Players[j].IsAdmin, r.Players[i].IsAdmin
	})
	return nil
}

// IsAdminEmail reports whether email holds the admin flag on any seat.
// Seat bindings compare case-insensitively, like game sign-in.
func (r *GameRegistry) IsAdminEmail(email string) bool {
	for _, p := range r.Players {
		if p.IsAdmin && strings.EqualFold(p.Email, email) {
			return true
		}
	}
	return false
}
