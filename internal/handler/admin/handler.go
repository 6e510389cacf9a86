package admin

import (
	"errors"
	"net/http"
	"strconv"

	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/middleware"
	"kingdom-server/internal/models"
	"kingdom-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultBlockButton - текст кнопки блока, если админ его не задал.
const defaultBlockButton = "Далее"

// Handler обслуживает админский API каталога и игроков.
type Handler struct {
	admin    service.CatalogAdmin
	verifier interfaces.TokenVerifier
	logger   *zap.Logger
}

// NewHandler создает Handler.
func NewHandler(admin service.CatalogAdmin, verifier interfaces.TokenVerifier, logger *zap.Logger) *Handler {
	return &Handler{
		admin:    admin,
		verifier: verifier,
		logger:   logger.Named("AdminHandler"),
	}
}

// RegisterRoutes регистрирует маршруты /admin. Все они требуют роль admin в межсервисном токене.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	adminGroup := router.Group("/admin", middleware.GinInterServiceAuth(h.verifier, models.RoleAdmin, h.logger))
	{
		adminGroup.GET("/events", h.listEvents)
		adminGroup.POST("/events", h.createEvent)
		adminGroup.GET("/events/:id", h.getEvent)
		adminGroup.DELETE("/events/:id", h.deleteEvent)
		adminGroup.POST("/events/:id/options", h.addOption)

		adminGroup.GET("/narrative-blocks", h.listBlocks)
		adminGroup.POST("/narrative-blocks", h.createBlock)
		adminGroup.DELETE("/narrative-blocks/:id", h.deleteBlock)

		adminGroup.GET("/players/:id", h.getPlayer)
		adminGroup.DELETE("/players/:id", h.resetPlayer)
	}
}

func (h *Handler) listEvents(c *gin.Context) {
	events, err := h.admin.ListEvents(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if events == nil {
		events = []models.EventCatalogEntry{}
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) getEvent(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	event, options, err := h.admin.GetEvent(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if options == nil {
		options = []models.EventOption{}
	}
	c.JSON(http.StatusOK, eventDetails{EventCatalogEntry: *event, Options: options})
}

func (h *Handler) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid create event request", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	event := req.toModel()
	if err := h.admin.CreateEvent(c.Request.Context(), event); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *Handler) deleteEvent(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.admin.DeleteEvent(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addOption(c *gin.Context) {
	eventID, ok := h.idParam(c)
	if !ok {
		return
	}
	var req createOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid create option request", zap.Int64("eventID", eventID), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	option := &models.EventOption{
		EventID:        eventID,
		ButtonText:     req.ButtonText,
		Effects:        req.Effects,
		OutcomeText:    req.OutcomeText,
		ResultImageURL: req.ResultImageURL,
		NextEventID:    req.NextEventID,
		DisplayOrder:   req.DisplayOrder,
	}
	if err := h.admin.AddOption(c.Request.Context(), option); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, option)
}

func (h *Handler) listBlocks(c *gin.Context) {
	blocks, err := h.admin.ListBlocks(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if blocks == nil {
		blocks = []models.NarrativeBlock{}
	}
	c.JSON(http.StatusOK, blocks)
}

func (h *Handler) createBlock(c *gin.Context) {
	var req createBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid create block request", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	block := &models.NarrativeBlock{
		BlockType:           req.BlockType,
		Text:                req.Text,
		ImageURL:            req.ImageURL,
		ButtonText:          req.ButtonText,
		SequenceOrder:       req.SequenceOrder,
		IsFinalInSequence:   req.IsFinalInSequence,
		RequiredPlaythrough: req.RequiredPlaythrough,
	}
	if block.ButtonText == "" {
		block.ButtonText = defaultBlockButton
	}
	if err := h.admin.CreateBlock(c.Request.Context(), block); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

func (h *Handler) deleteBlock(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.admin.DeleteBlock(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getPlayer(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	player, err := h.admin.GetPlayer(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

func (h *Handler) resetPlayer(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.admin.ResetPlayer(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) idParam(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Warn("Invalid id parameter", zap.String("id", raw))
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: "Invalid id format"})
		return 0, false
	}
	return id, true
}

func (h *Handler) handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp errorResponse

	switch {
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		errResp = errorResponse{Message: "Resource not found"}
	case errors.Is(err, models.ErrInvalidCatalogEntry):
		statusCode = http.StatusBadRequest
		errResp = errorResponse{Message: err.Error()}
	case errors.Is(err, models.ErrInvalidState):
		statusCode = http.StatusConflict
		errResp = errorResponse{Message: "Stored player state is invalid"}
	case errors.Is(err, models.ErrStorageUnavailable):
		statusCode = http.StatusServiceUnavailable
		errResp = errorResponse{Message: "Storage is temporarily unavailable"}
	default:
		h.logger.Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = errorResponse{Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
