package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kingdom-server/internal/authutils"
	"kingdom-server/internal/game"
	"kingdom-server/internal/handler"
	"kingdom-server/internal/middleware"
	"kingdom-server/internal/models"
	"kingdom-server/internal/service"
	serviceMocks "kingdom-server/internal/service/mocks"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-inter-service-secret"

type gameAPI struct {
	e     *echo.Echo
	turns *serviceMocks.TurnController
	token string
}

func newGameAPI(t *testing.T) *gameAPI {
	t.Helper()
	verifier, err := authutils.NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)
	token, err := authutils.IssueServiceToken(testSecret, "telegram-gateway", nil, time.Minute)
	require.NoError(t, err)

	turns := new(serviceMocks.TurnController)
	e := echo.New()
	handler.NewGameHandler(turns, verifier, zap.NewNop()).RegisterRoutes(e)
	return &gameAPI{e: e, turns: turns, token: token}
}

func (a *gameAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set(middleware.ServiceTokenHeader, a.token)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func samplePlayer() *models.PlayerRecord {
	return models.NewPlayerRecord(42, game.DefaultRules().Initial)
}

func TestGameHandler_Start(t *testing.T) {
	api := newGameAPI(t)
	eventID := int64(1)
	player := samplePlayer()
	player.CurrentEventID = &eventID

	api.turns.On("Start", mock.Anything, int64(42)).Return(&service.TurnResult{
		Outcome:   service.OutcomeEvent,
		Presented: []models.Presentation{{Kind: models.PresentationEvent, Text: "Караван"}},
		Player:    player,
	}, nil).Once()

	rec := api.do(http.MethodPost, "/api/v1/players/42/start", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, service.OutcomeEvent, resp.Outcome)
	require.Len(t, resp.Messages, 1)
	require.NotNil(t, resp.Player)
	assert.Equal(t, int64(1), *resp.Player.CurrentEventID)
	api.turns.AssertExpectations(t)
}

func TestGameHandler_MakeChoice(t *testing.T) {
	t.Run("Game over response", func(t *testing.T) {
		api := newGameAPI(t)
		final := models.CountryState{Support: 0, Treasury: 900, Army: models.LevelMedium, Peasants: models.LevelMedium, Year: 2}
		api.turns.On("MakeChoice", mock.Anything, int64(42), 0).Return(&service.TurnResult{
			Outcome:        service.OutcomeGameOver,
			GameOverReason: game.GameOverDeposed,
			FinalCountry:   &final,
			Player:         samplePlayer(),
		}, nil).Once()

		rec := api.do(http.MethodPost, "/api/v1/players/42/choice", `{"option_index": 0}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp handler.TurnResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, service.OutcomeGameOver, resp.Outcome)
		assert.Equal(t, string(game.GameOverDeposed), resp.GameOverReason)
		assert.Equal(t, game.GameOverDeposed.Message(), resp.GameOverMessage)
		assert.Equal(t, &final, resp.FinalState)
		assert.NotNil(t, resp.Messages)
	})

	t.Run("Validation", func(t *testing.T) {
		api := newGameAPI(t)
		for _, body := range []string{`{}`, `{"option_index": -1}`, `{"option_index": "a"}`} {
			rec := api.do(http.MethodPost, "/api/v1/players/42/choice", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
		api.turns.AssertNotCalled(t, "MakeChoice", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error mapping", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
		}{
			{models.ErrNoActiveEvent, http.StatusUnprocessableEntity},
			{fmt.Errorf("idx 9: %w", models.ErrInvalidChoiceIndex), http.StatusUnprocessableEntity},
			{models.ErrPlayerBusy, http.StatusConflict},
			{fmt.Errorf("%w: db", models.ErrStorageUnavailable), http.StatusServiceUnavailable},
			{fmt.Errorf("%w: gw", models.ErrPresentationFailed), http.StatusBadGateway},
			{fmt.Errorf("boom"), http.StatusInternalServerError},
		}
		for _, tc := range cases {
			api := newGameAPI(t)
			api.turns.On("MakeChoice", mock.Anything, int64(42), 1).Return(nil, tc.err).Once()

			rec := api.do(http.MethodPost, "/api/v1/players/42/choice", `{"option_index": 1}`)

			assert.Equal(t, tc.status, rec.Code, tc.err.Error())
			var apiErr handler.APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
			assert.NotEmpty(t, apiErr.Message)
		}
	})
}

func TestGameHandler_AdvanceNarrative(t *testing.T) {
	api := newGameAPI(t)
	api.turns.On("AdvanceNarrative", mock.Anything, int64(42), int64(3)).Return(&service.TurnResult{
		Outcome: service.OutcomeNarrative,
		Player:  samplePlayer(),
	}, nil).Once()

	rec := api.do(http.MethodPost, "/api/v1/players/42/narrative/3/next", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/players/42/narrative/abc/next", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	api.turns.AssertExpectations(t)
}

func TestGameHandler_GetPlayer(t *testing.T) {
	api := newGameAPI(t)
	api.turns.On("GetPlayer", mock.Anything, int64(42)).Return(samplePlayer(), nil).Once()
	api.turns.On("GetPlayer", mock.Anything, int64(7)).Return(nil, models.ErrNotFound).Once()

	rec := api.do(http.MethodGet, "/api/v1/players/42", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view handler.PlayerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 50, view.State.Support)
	assert.Equal(t, 1, view.PlaythroughCount)

	rec = api.do(http.MethodGet, "/api/v1/players/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameHandler_RequiresServiceToken(t *testing.T) {
	api := newGameAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/players/42/start", nil)
	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	api.turns.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
