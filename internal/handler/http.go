package handler

import (
	"errors"
	"net/http"
	"strconv"

	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/middleware"
	"kingdom-server/internal/models"
	"kingdom-server/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestValidator подключает go-playground/validator к echo.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// GameHandler обрабатывает HTTP запросы игрового API.
type GameHandler struct {
	turns    service.TurnController
	verifier interfaces.TokenVerifier
	logger   *zap.Logger
}

// NewGameHandler создает новый GameHandler.
func NewGameHandler(turns service.TurnController, verifier interfaces.TokenVerifier, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		turns:    turns,
		verifier: verifier,
		logger:   logger.Named("GameHandler"),
	}
}

// RegisterRoutes регистрирует маршруты игрового API.
func (h *GameHandler) RegisterRoutes(e *echo.Echo) {
	if e.Validator == nil {
		e.Validator = NewRequestValidator()
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	players := e.Group("/api/v1/players", middleware.InterServiceAuthMiddleware(h.verifier, h.logger))
	{
		players.GET("/:id", h.getPlayer)
		players.POST("/:id/start", h.start)
		players.POST("/:id/narrative/:blockId/next", h.advanceNarrative)
		players.POST("/:id/choice", h.makeChoice)
	}
}

func (h *GameHandler) start(c echo.Context) error {
	telegramID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	result, err := h.turns.Start(c.Request().Context(), telegramID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTurnResponse(result))
}

func (h *GameHandler) advanceNarrative(c echo.Context) error {
	telegramID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	blockID, err := parseIDParam(c, "blockId")
	if err != nil {
		return err
	}
	result, err := h.turns.AdvanceNarrative(c.Request().Context(), telegramID, blockID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTurnResponse(result))
}

func (h *GameHandler) makeChoice(c echo.Context) error {
	telegramID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ChoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "option_index must be a non-negative integer"})
	}

	result, err := h.turns.MakeChoice(c.Request().Context(), telegramID, *req.OptionIndex)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTurnResponse(result))
}

func (h *GameHandler) getPlayer(c echo.Context) error {
	telegramID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	player, err := h.turns.GetPlayer(c.Request().Context(), telegramID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toPlayerView(player))
}

// --- Вспомогательные функции --- //

func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

func (h *GameHandler) handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "Player not found"}
	case errors.Is(err, models.ErrInvalidState):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: "Stored player state is invalid, start a new game"}
	case errors.Is(err, models.ErrNoActiveEvent), errors.Is(err, models.ErrInvalidChoiceIndex):
		statusCode = http.StatusUnprocessableEntity
		apiErr = APIError{Message: models.UserMessage(err)}
	case errors.Is(err, models.ErrPlayerBusy):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: models.UserMessage(err)}
	case errors.Is(err, models.ErrStorageUnavailable):
		statusCode = http.StatusServiceUnavailable
		apiErr = APIError{Message: models.UserMessage(err)}
	case errors.Is(err, models.ErrPresentationFailed):
		statusCode = http.StatusBadGateway
		apiErr = APIError{Message: "Failed to deliver message to player"}
	default:
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}

	if statusCode >= http.StatusInternalServerError {
		h.logger.Error("Turn failed", zap.String("path", c.Path()), zap.Error(err))
	} else {
		h.logger.Info("Turn rejected", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(statusCode, apiErr)
}
