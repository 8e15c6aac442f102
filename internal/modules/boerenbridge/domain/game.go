package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Player count bounds for one game.
const (
	MinPlayers = 2
	MaxPlayers = 8
)

// SeatAssignment is the roster entry a game is created from: who sits
// where and who controls the game.
type SeatAssignment struct {
	Email        string
	IsController bool
}

// Game is the aggregate root of one match. It is mutated in place by
// the operations below, one at a time; the caller is responsible for
// serializing calls per game and for persisting the result. Version
// increases on every save and lets the live store reject lost updates.
type Game struct {
	Key           string    `json:"key"` // storage identity, stable across resets
	ID            string    `json:"id"`  // human-readable game name
	CompetitionID string    `json:"competition_id"`
	NrPlayers     int       `json:"nr_players"`
	NrRounds      int       `json:"nr_rounds"`
	Players       []*Player `json:"players"`
	Rounds        []*Round  `json:"rounds"`
	CurrentRound  int       `json:"current_round"`
	CurrentPlayer int       `json:"current_player"`
	Dealer        int       `json:"dealer"` // rotates every round; also leads the round
	Leader        int       `json:"leader"` // leads the current trick
	Trump         *Card     `json:"trump"`

	Started      bool `json:"started"`
	Shuffled     bool `json:"shuffled"`
	Betted       bool `json:"betted"` // all bets placed, play phase active
	ChooseWinner bool `json:"choose_winner"`
	CleanTable   bool `json:"clean_table"`
	RoundReady   bool `json:"round_ready"`
	GameOver     bool `json:"game_over"`

	GameOverAt time.Time  `json:"game_over_at"`
	Status     string     `json:"status"`
	Rules      ScoreRules `json:"rules"`
	Version    int64      `json:"version"`
}

// NewGame creates a game with a fixed roster. Seat 0 defaults to
// controller when the roster marks nobody.
func NewGame(id, competitionID string, seats []SeatAssignment) (*Game, error) {
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, fmt.Errorf("%w: expected %d-%d players, got %d", ErrInvalidMove, MinPlayers, MaxPlayers, len(seats))
	}

	g := &Game{
		Key:           uuid.NewString(),
		ID:            id,
		CompetitionID: competitionID,
		NrPlayers:     len(seats),
		Rules:         DefaultScoreRules(),
	}
	g.Players = make([]*Player, g.NrPlayers)
	hasController := false
	for i, seat := range seats {
		p := NewPlayer(i)
		p.Email = seat.Email
		p.IsController = seat.IsController
		hasController = hasController || seat.IsController
		g.Players[i] = p
	}
	if !hasController {
		g.Players[0].IsController = true
	}

	g.startNewGame(true)
	return g, nil
}

// startNewGame (re)initializes all match state. With keepRoster the
// players keep their seats and identities but lose scores and hands.
func (g *Game) startNewGame(keepRoster bool) {
	g.Rounds = NewRounds(g.NrPlayers)
	g.NrRounds = len(g.Rounds)
	g.CurrentRound = 0
	g.CurrentPlayer = 0
	g.Dealer = 0
	g.Leader = 0
	g.Trump = nil

	g.Started = false
	g.Shuffled = false
	g.Betted = false
	g.ChooseWinner = false
	g.CleanTable = false
	g.RoundReady = false
	g.GameOver = false
	g.GameOverAt = time.Time{}
	g.Status = "Waiting for players to sign in"

	if keepRoster {
		for _, p := range g.Players {
			p.SignedIn = false
			p.Score = 0
			p.Hand = []Card{}
		}
	}
}

// Reset starts a fresh playthrough with the same roster.
func (g *Game) Reset() {
	g.startNewGame(true)
}

// CurrentPlayerObj returns the player whose turn it is.
func (g *Game) CurrentPlayerObj() *Player {
	return g.Players[g.CurrentPlayer]
}

// DealerObj returns the player dealing (and leading) the current round.
func (g *Game) DealerObj() *Player {
	return g.Players[g.Dealer]
}

// AllPlayersSignedIn reports whether every seat has been claimed.
func (g *Game) AllPlayersSignedIn() bool {
	for _, p := range g.Players {
		if !p.SignedIn {
			return false
		}
	}
	return true
}

// Round returns the active round.
func (g *Game) Round() (*Round, error) {
	if g.CurrentRound < 0 || g.CurrentRound >= len(g.Rounds) {
		return nil, fmt.Errorf("%w: round index %d outside ladder of %d", ErrCorruptState, g.CurrentRound, len(g.Rounds))
	}
	r := g.Rounds[g.CurrentRound]
	if len(r.Table) != g.NrPlayers || len(r.Bets) != g.NrPlayers || len(r.Wins) != g.NrPlayers {
		return nil, fmt.Errorf("%w: round %d arrays not sized for %d players", ErrCorruptState, g.CurrentRound, g.NrPlayers)
	}
	return r, nil
}

// SignIn claims a seat for a player. The identity binding (email) is
// checked by the caller against the registry; here only the seat is
// validated.
func (g *Game) SignIn(seat int, name string, userID int64) error {
	if err := g.checkSeat(seat); err != nil {
		return err
	}
	p := g.Players[seat]
	p.SignedIn = true
	p.UserID = userID
	if name != "" {
		p.Name = name
	}
	if !g.Started {
		if g.AllPlayersSignedIn() {
			g.Status = fmt.Sprintf("All players are in. %s can start the game", g.Players[0].FirstName())
		} else {
			g.Status = "Waiting for " + g.missingPlayers() + "to sign in"
		}
	}
	return nil
}

// Start activates round 0. Valid exactly once, before any other
// gameplay operation.
func (g *Game) Start() error {
	if g.Started || g.GameOver {
		return fmt.Errorf("%w: game already started", ErrIllegalPhase)
	}
	g.Started = true
	g.Rounds[0].Current = true
	g.Status = fmt.Sprintf("Waiting for %s to shuffle", g.DealerObj().FirstName())
	return nil
}

// Shuffle deals the round's hand to every player from a fresh deck and
// draws a trump card. The RNG is injected so tests can seed it; the
// trump card is drawn independently of the dealt cards (only its suit
// matters for play).
func (g *Game) Shuffle(rng *rand.Rand) error {
	if !g.Started || g.GameOver {
		return fmt.Errorf("%w: shuffle before start or after game over", ErrIllegalPhase)
	}
	if g.Shuffled {
		// Re-shuffling a live round would silently discard hands.
		return fmt.Errorf("%w: round already dealt", ErrIllegalPhase)
	}
	round, err := g.Round()
	if err != nil {
		return err
	}
	if round.HandSize*g.NrPlayers > DeckSize(g.NrPlayers) {
		return fmt.Errorf("%w: hand size %d exceeds stock for %d players", ErrCorruptState, round.HandSize, g.NrPlayers)
	}

	round.Current = true
	stock := NewDeck(g.NrPlayers)
	for _, p := range g.Players {
		p.Hand = make([]Card, 0, round.HandSize)
		for s := 0; s < round.HandSize; s++ {
			n := rng.Intn(len(stock))
			p.Hand = append(p.Hand, stock[n])
			stock = append(stock[:n], stock[n+1:]...)
		}
		sortHand(p.Hand)
	}

	min := MinRank(g.NrPlayers)
	g.Trump = &Card{
		Suit: Suit(rng.Intn(NrSuits)),
		Rank: min + Rank(rng.Intn(int(Ace-min)+1)),
	}
	g.Shuffled = true
	g.ChooseWinner = false
	g.Status = fmt.Sprintf("Waiting for %s to bet", g.CurrentPlayerObj().FirstName())
	return nil
}

// PlaceBet records a seat's bet for the active round and advances the
// turn. When the last bet lands the game flips to the play phase.
func (g *Game) PlaceBet(seat, amount int) error {
	if !g.Shuffled || g.Betted || g.GameOver {
		return fmt.Errorf("%w: betting is not open", ErrIllegalPhase)
	}
	if err := g.checkSeat(seat); err != nil {
		return err
	}
	if seat != g.CurrentPlayer {
		return fmt.Errorf("%w: not %s's turn to bet", ErrInvalidMove, SeatLabel(seat))
	}
	round, err := g.Round()
	if err != nil {
		return err
	}
	if amount < 0 || amount > round.HandSize {
		return fmt.Errorf("%w: bet %d outside 0..%d", ErrInvalidMove, amount, round.HandSize)
	}

	round.Bets[seat] = amount
	if round.AllBetsPlaced() {
		g.Betted = true
	}
	g.advanceTurn()

	next := g.CurrentPlayerObj().FirstName()
	if g.Betted {
		g.Status = fmt.Sprintf("%s placed a bet. Waiting for %s to play", SeatLabel(seat), next)
	} else {
		g.Status = fmt.Sprintf("%s placed a bet. Waiting for %s to bet", SeatLabel(seat), next)
	}
	return nil
}

// PlayCard moves a card from the seat's hand to its table slot and
// advances the turn. Filling the last slot resolves the trick and
// marks the table for clearing.
func (g *Game) PlayCard(seat int, card Card) error {
	if !g.Betted || g.GameOver {
		return fmt.Errorf("%w: play phase is not active", ErrIllegalPhase)
	}
	if g.CleanTable || g.ChooseWinner {
		return fmt.Errorf("%w: table must be cleared first", ErrIllegalPhase)
	}
	if err := g.checkSeat(seat); err != nil {
		return err
	}
	if seat != g.CurrentPlayer {
		return fmt.Errorf("%w: not %s's turn to play", ErrInvalidMove, SeatLabel(seat))
	}
	round, err := g.Round()
	if err != nil {
		return err
	}
	if round.Table[seat].Card != nil {
		return fmt.Errorf("%w: %s already played this trick", ErrInvalidMove, SeatLabel(seat))
	}
	if !g.Players[seat].removeCard(card) {
		return fmt.Errorf("%w: %s does not hold %s", ErrInvalidMove, SeatLabel(seat), card.Face())
	}

	played := card
	round.Table[seat] = PlayedCard{Seat: seat, Card: &played}
	g.advanceTurn()

	if round.TableFull() {
		if g.Trump == nil {
			return fmt.Errorf("%w: trick complete with no trump set", ErrCorruptState)
		}
		winner, err := resolveTrick(round.Table, g.Leader, g.Trump.Suit)
		if err != nil {
			return err
		}
		g.markTrickWinner(round, winner)
		g.CleanTable = true
		g.ChooseWinner = true
		g.Status = fmt.Sprintf("%s takes the trick. Waiting for the winner to be confirmed", g.Players[winner].FirstName())
		return nil
	}

	g.Status = fmt.Sprintf("Waiting for %s to play", g.CurrentPlayerObj().FirstName())
	return nil
}

// PlayRandomCard plays the first card of a seat's hand. A controller
// convenience for absent players.
func (g *Game) PlayRandomCard(seat int) error {
	if err := g.checkSeat(seat); err != nil {
		return err
	}
	if len(g.Players[seat].Hand) == 0 {
		return fmt.Errorf("%w: %s has no cards left", ErrInvalidMove, SeatLabel(seat))
	}
	return g.PlayCard(seat, g.Players[seat].Hand[0])
}

// ChooseTrickWinner overrides the automatic trick resolution, marking
// the given seat's card as the winner. Administrative confirmation
// path; the automatic result is authoritative unless a controller
// explicitly overrides it here.
func (g *Game) ChooseTrickWinner(seat int) error {
	round, err := g.Round()
	if err != nil {
		return err
	}
	if !round.TableFull() {
		return fmt.Errorf("%w: trick is not complete", ErrIllegalPhase)
	}
	if err := g.checkSeat(seat); err != nil {
		return err
	}
	g.markTrickWinner(round, seat)
	g.CleanTable = true
	g.Status = fmt.Sprintf("%s won the trick", g.Players[seat].FirstName())
	return nil
}

// ClearTrick books the trick for its winner, archives it into the
// round history and resets the table. The winner leads the next trick.
// When the winner's hand is empty the round is ready to be scored.
func (g *Game) ClearTrick() error {
	if !g.CleanTable {
		return fmt.Errorf("%w: no completed trick on the table", ErrIllegalPhase)
	}
	round, err := g.Round()
	if err != nil {
		return err
	}
	winner := round.winnerSeat()
	if winner < 0 {
		return fmt.Errorf("%w: completed trick has no winner flag", ErrCorruptState)
	}

	round.Wins[winner]++
	g.CurrentPlayer = winner
	g.Leader = winner
	g.ChooseWinner = false
	g.CleanTable = false

	round.History = append(round.History, round.Table)
	round.Trump = g.Trump
	round.ResetTable(g.NrPlayers)

	if len(g.Players[winner].Hand) == 0 {
		g.RoundReady = true
		g.Status = "Round finished. Waiting for the next round"
	} else {
		g.Status = fmt.Sprintf("Waiting for %s to play", g.CurrentPlayerObj().FirstName())
	}
	return nil
}

// NextRound scores the finished round and advances the ladder. On the
// last round it marks the game over instead (terminal; calling it
// again is a no-op).
func (g *Game) NextRound() error {
	if g.GameOver {
		return nil
	}
	round, err := g.Round()
	if err != nil {
		return err
	}

	round.Current = false
	for i, p := range g.Players {
		delta := g.Rules.RoundDelta(round.Bets[i], round.Wins[i])
		p.Score += delta
		round.Scores[i] = p.Score
		round.Winners[i] = round.Bets[i] == round.Wins[i]
	}

	if g.CurrentRound == g.NrRounds-1 {
		g.GameOver = true
		g.GameOverAt = time.Now().UTC()
		g.Status = "Game over!"
		return nil
	}

	g.CurrentRound++
	g.Rounds[g.CurrentRound].Current = true
	g.Dealer = (g.Dealer + 1) % g.NrPlayers
	g.Leader = g.Dealer
	g.CurrentPlayer = g.Dealer
	g.Betted = false
	g.Shuffled = false
	g.RoundReady = false
	g.Status = fmt.Sprintf("Waiting for %s to shuffle", g.DealerObj().FirstName())
	return nil
}

// ResetCurrentRound rolls the active round back to its pre-deal state
// without touching scores of earlier rounds. Recovery path, not a
// gameplay transition.
func (g *Game) ResetCurrentRound() error {
	round, err := g.Round()
	if err != nil {
		return err
	}
	round.Current = true
	g.Leader = g.Dealer
	g.CurrentPlayer = g.Dealer
	g.Betted = false
	g.Shuffled = false
	g.RoundReady = false
	g.CleanTable = false
	g.ChooseWinner = false
	for i, p := range g.Players {
		p.Hand = []Card{}
		round.Bets[i] = BetNotPlaced
		round.Wins[i] = 0
		round.Winners[i] = false
	}
	round.History = [][]PlayedCard{}
	round.ResetTable(g.NrPlayers)
	g.Status = fmt.Sprintf("Round restarted. Waiting for %s to shuffle", g.DealerObj().FirstName())
	return nil
}

// AvailableSeats lists the seat labels nobody has claimed yet.
func (g *Game) AvailableSeats() []string {
	var free []string
	for _, p := range g.Players {
		if !p.SignedIn {
			free = append(free, p.Label)
		}
	}
	return free
}

// Redacted returns a deep-enough copy of the game with every hand
// emptied, safe to push to viewers and to players other than the
// hand's owner.
func (g *Game) Redacted() *Game {
	clone := *g
	clone.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		cp := *p
		cp.Hand = []Card{}
		clone.Players[i] = &cp
	}
	return &clone
}

func (g *Game) advanceTurn() {
	g.CurrentPlayer = (g.CurrentPlayer + 1) % g.NrPlayers
}

func (g *Game) markTrickWinner(round *Round, seat int) {
	for i := range round.Table {
		round.Table[i].Winner = false
	}
	round.Table[seat].Winner = true
}

func (g *Game) checkSeat(seat int) error {
	if seat < 0 || seat >= g.NrPlayers {
		return fmt.Errorf("%w: seat %d out of range 0..%d", ErrInvalidMove, seat, g.NrPlayers-1)
	}
	return nil
}

func (g *Game) missingPlayers() string {
	var s string
	for _, p := range g.Players {
		if !p.SignedIn {
			s += p.Label + " "
		}
	}
	return s
}
