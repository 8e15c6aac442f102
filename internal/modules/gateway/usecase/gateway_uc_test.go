package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	"github.com/jannikanker/OhHellCardGame/internal/modules/gateway/ws"
	"github.com/jannikanker/OhHellCardGame/pkg/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGameService records the last call so tests can assert dispatch.
type fakeGameService struct {
	lastMethod string
	lastGameID string
	lastActor  service.GameActor
	lastBet    int
	lastCard   domain.Card
	lastSeat   int

	view   *domain.Game
	scores []domain.GameScore
	err    error
}

func (f *fakeGameService) record(method, gameID string, actor service.GameActor) (*domain.Game, error) {
	f.lastMethod = method
	f.lastGameID = gameID
	f.lastActor = actor
	return f.view, f.err
}

func (f *fakeGameService) JoinGame(_ context.Context, gameID string, actor service.GameActor) (*domain.Game, error) {
	return f.record("join_game", gameID, actor)
}

func (f *fakeGameService) ViewGame(_ context.Context, gameID string, actor service.GameActor) (*domain.Game, error) {
	return f.record("view_game", gameID, actor)
}

func (f *fakeGameService) AvailablePlayers(_ context.Context, gameID string) ([]string, error) {
	f.lastMethod = "available_players"
	f.lastGameID = gameID
	return []string{"p3@example.com"}, f.err
}

func (f *fakeGameService) StartGame(_ context.Context, gameID string, actor service.GameActor) (*domain.Game, error) {
	return f.record("start_game", gameID, actor)
}

func (f *fakeGameService) Shuffle(_ context.Context, gameID string, actor service.GameActor) (*domain.Game, error) {
	return f.record("shuffle", gameID, actor)
}

func (f *fakeGameService) PlaceBet(_ context.Context, gameID string, actor service.GameActor, amount int) (*domain.Game, error) {
	f.lastBet = amount
	return f.record("place_bet", gameID, actor)
}

func (f *fakeGameService) PlayCard(_ context.Context, gameID string, actor service.GameActor, card domain.Card) (*domain.Game, error) {
	f.lastCard = card
	return f.record("play_card", gameID, actor)
}

func (f *fakeGameService) PlayRandomCard(_ context.Context, gameID string, actor service.GameActor, seat int) (*domain.Game, error) {
	f.lastSeat = seat
	return f.record("play_random_card", gameID, actor)
}

func (f *fakeGameService) ChooseWinner(_ context.Context, gameID string, actor service.GameActor, seat int) (*domain.Game, error) {
	f.lastSeat = seat
	return f.record("choose_winner", gameID, actor)
}

func (f *fakeGameService) CleanTable(_ context.Context, gameID string, actor service.GameActor) (*domain.Game, error) {
	return f.record("clean_table", gameID, actor)
}

func (f *fakeGameService) NextRound(_ context.Context, gameID string, actor service.GameActor) (*domain.Game, error) {
	return f.record("next_round", gameID, actor)
}

func (f *fakeGameService) ResetRound(_ context.Context, gameID string, actor service.GameActor) (*domain.Game, error) {
	return f.record("reset_round", gameID, actor)
}

func (f *fakeGameService) ResetGame(_ context.Context, gameID string, actor service.GameActor) (*domain.Game, error) {
	return f.record("reset_game", gameID, actor)
}

func (f *fakeGameService) GetState(_ context.Context, gameID string, actor service.GameActor) (*domain.Game, error) {
	return f.record("get_state", gameID, actor)
}

func (f *fakeGameService) TopScores(_ context.Context) ([]domain.GameScore, error) {
	f.lastMethod = "top_scores"
	return f.scores, f.err
}

type envelope struct {
	GameCode string          `json:"game_code"`
	Command  string          `json:"command"`
	Data     json.RawMessage `json:"data"`
}

func newTestGateway() (*GatewayUseCase, *fakeGameService) {
	svc := &fakeGameService{view: &domain.Game{ID: "friday-night"}}
	return NewGatewayUseCase(svc, ws.NewManager(ws.Options{})), svc
}

func decode(t *testing.T, resp []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp, &env))
	assert.Equal(t, "boerenbridge", env.GameCode)
	return env
}

func TestHandleMessageRejectsMalformedEnvelopes(t *testing.T) {
	uc, _ := newTestGateway()
	ctx := context.Background()
	actor := service.GameActor{UserID: 1, Email: "p1@example.com"}

	_, err := uc.HandleMessage(ctx, actor, []byte("not json"))
	assert.Error(t, err)

	_, err = uc.HandleMessage(ctx, actor, []byte(`{"command":"join_game"}`))
	assert.Error(t, err, "missing game code")

	_, err = uc.HandleMessage(ctx, actor, []byte(`{"game":"poker","command":"join_game"}`))
	assert.Error(t, err, "unknown game code")

	_, err = uc.HandleMessage(ctx, actor, []byte(`{"game":"boerenbridge","command":"discard","data":{"game":"g1"}}`))
	assert.Error(t, err, "unknown command")

	_, err = uc.HandleMessage(ctx, actor, []byte(`{"game":"boerenbridge","command":"join_game","data":{}}`))
	assert.Error(t, err, "missing game id")
}

func TestHandleMessageDispatchesCommands(t *testing.T) {
	uc, svc := newTestGateway()
	ctx := context.Background()
	actor := service.GameActor{UserID: 7, Email: "p1@example.com", Name: "p1"}

	resp, err := uc.HandleMessage(ctx, actor, []byte(`{"game":"boerenbridge","command":"join_game","data":{"game":"friday-night"}}`))
	require.NoError(t, err)
	env := decode(t, resp)
	assert.Equal(t, "join_game", env.Command)
	assert.Equal(t, "join_game", svc.lastMethod)
	assert.Equal(t, "friday-night", svc.lastGameID)
	assert.Equal(t, actor, svc.lastActor)

	resp, err = uc.HandleMessage(ctx, actor, []byte(`{"game":"boerenbridge","command":"place_bet","data":{"game":"friday-night","bet":2}}`))
	require.NoError(t, err)
	assert.Equal(t, "place_bet", decode(t, resp).Command)
	assert.Equal(t, 2, svc.lastBet)

	resp, err = uc.HandleMessage(ctx, actor, []byte(`{"game":"boerenbridge","command":"play_card","data":{"game":"friday-night","card":{"suit":3,"rank":14}}}`))
	require.NoError(t, err)
	assert.Equal(t, "play_card", decode(t, resp).Command)
	assert.Equal(t, domain.Card{Suit: domain.Hearts, Rank: domain.Ace}, svc.lastCard)

	resp, err = uc.HandleMessage(ctx, actor, []byte(`{"game":"boerenbridge","command":"choose_winner","data":{"game":"friday-night","seat":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "choose_winner", decode(t, resp).Command)
	assert.Equal(t, 1, svc.lastSeat)
}

func TestHandleMessageRequiresCommandArguments(t *testing.T) {
	uc, _ := newTestGateway()
	ctx := context.Background()
	actor := service.GameActor{UserID: 7, Email: "p1@example.com"}

	_, err := uc.HandleMessage(ctx, actor, []byte(`{"game":"boerenbridge","command":"place_bet","data":{"game":"friday-night"}}`))
	assert.Error(t, err, "place_bet without bet")

	_, err = uc.HandleMessage(ctx, actor, []byte(`{"game":"boerenbridge","command":"play_card","data":{"game":"friday-night"}}`))
	assert.Error(t, err, "play_card without card")

	_, err = uc.HandleMessage(ctx, actor, []byte(`{"game":"boerenbridge","command":"choose_winner","data":{"game":"friday-night"}}`))
	assert.Error(t, err, "choose_winner without seat")
}

func TestTopScoresNeedsNoGameID(t *testing.T) {
	uc, svc := newTestGateway()
	svc.scores = []domain.GameScore{{GameID: "friday-night", Name: "p1", Score: 42}}

	resp, err := uc.HandleMessage(context.Background(), service.GameActor{UserID: 7}, []byte(`{"game":"boerenbridge","command":"top_scores","data":{}}`))
	require.NoError(t, err)

	env := decode(t, resp)
	assert.Equal(t, "top_scores", env.Command)

	var scores []domain.GameScore
	require.NoError(t, json.Unmarshal(env.Data, &scores))
	require.Len(t, scores, 1)
	assert.Equal(t, 42, scores[0].Score)
}

func TestRuleViolationBecomesErrorEnvelope(t *testing.T) {
	uc, svc := newTestGateway()
	svc.err = domain.ErrInvalidMove

	resp, err := uc.HandleMessage(context.Background(), service.GameActor{UserID: 7, Email: "p1@example.com"},
		[]byte(`{"game":"boerenbridge","command":"place_bet","data":{"game":"friday-night","bet":2}}`))
	require.NoError(t, err, "rule violations travel as error envelopes, not transport errors")

	env := decode(t, resp)
	assert.Equal(t, "error", env.Command)

	var data struct {
		Command string `json:"command"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "place_bet", data.Command)
	assert.Contains(t, data.Error, domain.ErrInvalidMove.Error())
}

func TestLeaveGameHandledWithoutGameService(t *testing.T) {
	uc, svc := newTestGateway()

	resp, err := uc.HandleMessage(context.Background(), service.GameActor{UserID: 7},
		[]byte(`{"game":"boerenbridge","command":"leave_game","data":{"game":"friday-night"}}`))
	require.NoError(t, err)
	assert.Equal(t, "leave_game", decode(t, resp).Command)
	assert.Empty(t, svc.lastMethod, "leave_game never reaches the game service")
}
