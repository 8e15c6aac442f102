package usecase

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/repository/memory"
)

// mockBroadcaster records every push so tests can assert on them.
type mockBroadcaster struct {
	mu     sync.Mutex
	group  []domain.Event
	direct map[int64][]domain.Event
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{direct: make(map[int64][]domain.Event)}
}

func (m *mockBroadcaster) BroadcastGame(gameID string, event domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.group = append(m.group, event)
}

func (m *mockBroadcaster) SendToUser(userID int64, event domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.direct[userID] = append(m.direct[userID], event)
}

func (m *mockBroadcaster) lastGroup() (domain.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.group) == 0 {
		return domain.Event{}, false
	}
	return m.group[len(m.group)-1], true
}

func (m *mockBroadcaster) lastDirect(userID int64) (domain.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evts := m.direct[userID]
	if len(evts) == 0 {
		return domain.Event{}, false
	}
	return evts[len(evts)-1], true
}

// fakeArchive records archived games in memory.
type fakeArchive struct {
	mu       sync.Mutex
	archives []*domain.GameArchive
	scores   []domain.PlayerScore
}

func (f *fakeArchive) Archive(ctx context.Context, archive *domain.GameArchive, scores []domain.PlayerScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archives = append(f.archives, archive)
	f.scores = append(f.scores, scores...)
	return nil
}

func (f *fakeArchive) TopScores(ctx context.Context, limit int) ([]domain.GameScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var top []domain.GameScore
	for _, s := range f.scores {
		top = append(top, domain.GameScore{GameID: s.GameID, Name: s.Name, Score: s.Score, GameOverAt: s.GameOverAt})
		if len(top) == limit {
			break
		}
	}
	return top, nil
}

// fakeRegistries is an in-memory registry store.
type fakeRegistries struct {
	mu   sync.Mutex
	regs map[string]*domain.GameRegistry
}

func newFakeRegistries() *fakeRegistries {
	return &fakeRegistries{regs: make(map[string]*domain.GameRegistry)}
}

func (f *fakeRegistries) Create(ctx context.Context, reg *domain.GameRegistry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs[reg.ID] = reg
	return nil
}

func (f *fakeRegistries) Update(ctx context.Context, reg *domain.GameRegistry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs[reg.ID] = reg
	return nil
}

func (f *fakeRegistries) GetByID(ctx context.Context, id string) (*domain.GameRegistry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return reg, nil
}

func (f *fakeRegistries) GetByName(ctx context.Context, name string) (*domain.GameRegistry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reg := range f.regs {
		if reg.Name == name {
			return reg, nil
		}
	}
	return nil, domain.ErrGameNotFound
}

func (f *fakeRegistries) List(ctx context.Context) ([]*domain.GameRegistry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var regs []*domain.GameRegistry
	for _, reg := range f.regs {
		regs = append(regs, reg)
	}
	return regs, nil
}

func (f *fakeRegistries) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.regs, id)
	return nil
}

const adminEmail = "admin@example.com"

type fixture struct {
	uc      *GameUseCase
	games   *memory.GameRepository
	archive *fakeArchive
	push    *mockBroadcaster
	gameID  string
	actors  []Actor
}

func newFixture(t *testing.T, nrPlayers int) *fixture {
	t.Helper()
	games := memory.NewGameRepository()
	archive := &fakeArchive{}
	push := newMockBroadcaster()

	uc := NewGameUseCase(games, archive, push, adminEmail, 10)
	uc.SetRNG(func() *rand.Rand { return rand.New(rand.NewSource(42)) })

	actors := make([]Actor, nrPlayers)
	seats := make([]domain.SeatAssignment, nrPlayers)
	for i := range seats {
		actors[i] = Actor{
			UserID: int64(i + 1),
			Email:  domain.SeatLabel(i) + "@example.com",
			Name:   "Player " + domain.SeatLabel(i),
		}
		seats[i] = domain.SeatAssignment{Email: actors[i].Email, IsController: i == 0}
	}

	game, err := domain.NewGame("friday-night", "cup-2026", seats)
	require.NoError(t, err)
	require.NoError(t, games.Save(context.Background(), game))

	return &fixture{uc: uc, games: games, archive: archive, push: push, gameID: game.ID, actors: actors}
}

func (f *fixture) joinAll(t *testing.T) {
	t.Helper()
	for _, a := range f.actors {
		_, err := f.uc.JoinGame(context.Background(), f.gameID, a)
		require.NoError(t, err)
	}
}

func (f *fixture) startAndDeal(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	f.joinAll(t)
	_, err := f.uc.StartGame(ctx, f.gameID, f.actors[0])
	require.NoError(t, err)
	_, err = f.uc.Shuffle(ctx, f.gameID, f.actors[0])
	require.NoError(t, err)
}

func TestJoinGameBindsSeatByEmail(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	view, err := f.uc.JoinGame(ctx, f.gameID, f.actors[2])
	require.NoError(t, err)
	assert.True(t, view.Players[2].SignedIn)
	assert.Equal(t, f.actors[2].Name, view.Players[2].Name)

	evt, ok := f.push.lastDirect(f.actors[2].UserID)
	require.True(t, ok)
	assert.Equal(t, CmdJoinedGame, evt.Command)

	stored, err := f.games.Get(ctx, f.gameID)
	require.NoError(t, err)
	assert.Equal(t, f.actors[2].UserID, stored.Players[2].UserID)
}

func TestJoinGameRejectsUnknownEmail(t *testing.T) {
	f := newFixture(t, 4)

	_, err := f.uc.JoinGame(context.Background(), f.gameID, Actor{UserID: 99, Email: "stranger@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidMove)
}

func TestStartGameControllerOnly(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	f.joinAll(t)

	_, err := f.uc.StartGame(ctx, f.gameID, f.actors[1])
	assert.ErrorIs(t, err, domain.ErrInvalidMove)

	_, err = f.uc.StartGame(ctx, f.gameID, f.actors[0])
	require.NoError(t, err)

	evt, ok := f.push.lastGroup()
	require.True(t, ok)
	assert.Equal(t, CmdGameStarted, evt.Command)
}

func TestSystemAdminHasControllerRights(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	f.joinAll(t)

	_, err := f.uc.StartGame(ctx, f.gameID, Actor{UserID: 77, Email: adminEmail})
	require.NoError(t, err)
}

func TestShuffleRedactsGroupBroadcast(t *testing.T) {
	f := newFixture(t, 4)
	f.startAndDeal(t)

	evt, ok := f.push.lastGroup()
	require.True(t, ok)
	require.Equal(t, CmdShuffled, evt.Command)
	broadcast := evt.Data.(*domain.Game)
	for _, p := range broadcast.Players {
		assert.Empty(t, p.Hand, "group broadcast must not leak hands")
	}

	// Each player's private push carries exactly their own hand.
	for i, a := range f.actors {
		private, ok := f.push.lastDirect(a.UserID)
		require.True(t, ok)
		require.Equal(t, CmdHandDealt, private.Command)
		view := private.Data.(*domain.Game)
		assert.Len(t, view.Players[i].Hand, 1)
		for j, p := range view.Players {
			if j != i {
				assert.Empty(t, p.Hand)
			}
		}
	}
}

func TestPlaceBetResolvesSeatFromActor(t *testing.T) {
	f := newFixture(t, 4)
	f.startAndDeal(t)
	ctx := context.Background()

	_, err := f.uc.PlaceBet(ctx, f.gameID, f.actors[1], 1)
	assert.ErrorIs(t, err, domain.ErrInvalidMove, "seat 1 may not bet before seat 0")

	view, err := f.uc.PlaceBet(ctx, f.gameID, f.actors[0], 1)
	require.NoError(t, err)
	round := view.Rounds[view.CurrentRound]
	assert.Equal(t, 1, round.Bets[0])
}

func TestFullTrickFlow(t *testing.T) {
	f := newFixture(t, 4)
	f.startAndDeal(t)
	ctx := context.Background()

	for _, a := range f.actors {
		_, err := f.uc.PlaceBet(ctx, f.gameID, a, 0)
		require.NoError(t, err)
	}

	for _, a := range f.actors {
		state, err := f.uc.GetState(ctx, f.gameID, a)
		require.NoError(t, err)
		seat := -1
		for _, p := range state.Players {
			if p.UserID == a.UserID {
				seat = p.Seat
			}
		}
		require.GreaterOrEqual(t, seat, 0)
		if state.CleanTable {
			break
		}
		_, err = f.uc.PlayCard(ctx, f.gameID, a, state.Players[seat].Hand[0])
		require.NoError(t, err)
	}

	state, err := f.uc.GetState(ctx, f.gameID, f.actors[0])
	require.NoError(t, err)
	assert.True(t, state.CleanTable)

	_, err = f.uc.CleanTable(ctx, f.gameID, f.actors[0])
	require.NoError(t, err)

	state, err = f.uc.GetState(ctx, f.gameID, f.actors[0])
	require.NoError(t, err)
	assert.True(t, state.RoundReady, "round 0 has one trick")
}

func TestNextRoundArchivesFinishedGame(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	f.joinAll(t)
	_, err := f.uc.StartGame(ctx, f.gameID, f.actors[0])
	require.NoError(t, err)

	// Play the whole ladder through the public surface.
	for {
		state, err := f.uc.GetState(ctx, f.gameID, f.actors[0])
		require.NoError(t, err)
		if state.GameOver {
			break
		}

		_, err = f.uc.Shuffle(ctx, f.gameID, f.actors[0])
		require.NoError(t, err)
		// Betting starts at the dealer of the round, not at seat 0.
		for i := 0; i < len(f.actors); i++ {
			seat := (state.CurrentPlayer + i) % len(f.actors)
			_, err = f.uc.PlaceBet(ctx, f.gameID, f.actors[seat], 0)
			require.NoError(t, err)
		}

		for {
			state, err = f.uc.GetState(ctx, f.gameID, f.actors[0])
			require.NoError(t, err)
			if state.RoundReady {
				break
			}
			if state.CleanTable {
				_, err = f.uc.CleanTable(ctx, f.gameID, f.actors[0])
				require.NoError(t, err)
				continue
			}
			_, err = f.uc.PlayRandomCard(ctx, f.gameID, f.actors[0], state.CurrentPlayer)
			require.NoError(t, err)
		}

		_, err = f.uc.NextRound(ctx, f.gameID, f.actors[0])
		require.NoError(t, err)
	}

	require.Len(t, f.archive.archives, 1)
	assert.Len(t, f.archive.scores, 4)
	assert.NotEmpty(t, f.archive.archives[0].Snapshot)
	assert.Equal(t, f.gameID, f.archive.archives[0].GameID)

	evt, ok := f.push.lastGroup()
	require.True(t, ok)
	assert.Equal(t, CmdGameOver, evt.Command)

	// Advancing a finished game again must not archive twice.
	_, err = f.uc.NextRound(ctx, f.gameID, f.actors[0])
	require.NoError(t, err)
	assert.Len(t, f.archive.archives, 1)
}

func TestResetGameControllerOnly(t *testing.T) {
	f := newFixture(t, 4)
	f.startAndDeal(t)
	ctx := context.Background()

	_, err := f.uc.ResetGame(ctx, f.gameID, f.actors[3])
	assert.ErrorIs(t, err, domain.ErrInvalidMove)

	view, err := f.uc.ResetGame(ctx, f.gameID, f.actors[0])
	require.NoError(t, err)
	assert.False(t, view.Started)
	assert.Equal(t, 0, view.CurrentRound)
}

func TestRawStateControllerOnly(t *testing.T) {
	f := newFixture(t, 4)
	f.startAndDeal(t)
	ctx := context.Background()

	_, err := f.uc.RawState(ctx, f.gameID, f.actors[1])
	assert.ErrorIs(t, err, domain.ErrInvalidMove)

	raw, err := f.uc.RawState(ctx, f.gameID, f.actors[0])
	require.NoError(t, err)
	for _, p := range raw.Players {
		assert.Len(t, p.Hand, 1, "raw state carries every hand")
	}
}

func TestOverwriteStateKeepsStorageIdentity(t *testing.T) {
	f := newFixture(t, 4)
	f.startAndDeal(t)
	ctx := context.Background()

	raw, err := f.uc.RawState(ctx, f.gameID, f.actors[0])
	require.NoError(t, err)
	raw.Players[2].Score = 42
	raw.Key = "forged-key"
	raw.Version = 999

	_, err = f.uc.OverwriteState(ctx, f.gameID, f.actors[1], raw)
	assert.ErrorIs(t, err, domain.ErrInvalidMove)

	_, err = f.uc.OverwriteState(ctx, f.gameID, f.actors[0], nil)
	assert.ErrorIs(t, err, domain.ErrCorruptState)

	view, err := f.uc.OverwriteState(ctx, f.gameID, f.actors[0], raw)
	require.NoError(t, err)
	assert.Equal(t, 42, view.Players[2].Score)

	stored, err := f.games.Get(ctx, f.gameID)
	require.NoError(t, err)
	assert.Equal(t, 42, stored.Players[2].Score)
	assert.NotEqual(t, "forged-key", stored.Key, "storage identity survives the overwrite")

	evt, ok := f.push.lastGroup()
	require.True(t, ok)
	assert.Equal(t, CmdGameState, evt.Command)
	broadcast := evt.Data.(*domain.Game)
	for _, p := range broadcast.Players {
		assert.Empty(t, p.Hand, "overwrite broadcast must not leak hands")
	}
}

func TestViewGameNeverLeaksHands(t *testing.T) {
	f := newFixture(t, 4)
	f.startAndDeal(t)

	viewer := Actor{UserID: 55, Email: "viewer@example.com"}
	view, err := f.uc.ViewGame(context.Background(), f.gameID, viewer)
	require.NoError(t, err)
	for _, p := range view.Players {
		assert.Empty(t, p.Hand)
	}
}

func TestAvailablePlayers(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	free, err := f.uc.AvailablePlayers(ctx, f.gameID)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2", "P3"}, free)

	_, err = f.uc.JoinGame(ctx, f.gameID, f.actors[1])
	require.NoError(t, err)

	free, err = f.uc.AvailablePlayers(ctx, f.gameID)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P3"}, free)
}

func TestTopScores(t *testing.T) {
	f := newFixture(t, 2)
	f.archive.scores = []domain.PlayerScore{
		{GameID: "g1", Name: "Anna", Score: 120},
		{GameID: "g2", Name: "Bob", Score: 90},
	}

	top, err := f.uc.TopScores(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Anna", top[0].Name)
}

func TestUnknownGame(t *testing.T) {
	f := newFixture(t, 2)
	_, err := f.uc.GetState(context.Background(), "no-such-game", f.actors[0])
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}
