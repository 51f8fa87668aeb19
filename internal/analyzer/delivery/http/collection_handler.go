package http

import (
	"net/http"

	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/analyzer/service"
	"golang-swing-market/pkg/common"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/utils"

	"github.com/labstack/echo/v4"
)

// CollectionHandler handles HTTP requests that enqueue price collection tasks.
type CollectionHandler struct {
	publisher service.TaskPublisher
	logger    *logger.Logger
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(publisher service.TaskPublisher, logger *logger.Logger) *CollectionHandler {
	return &CollectionHandler{publisher: publisher, logger: logger}
}

// RegisterRoutes registers the collection routes to the Echo group.
func (h *CollectionHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.EnqueueCollection)
}

// EnqueueCollection godoc
// @Summary Enqueue a daily price collection task
// @Description Queue collection of daily bars for the given symbols, or the whole universe when symbols is empty
// @Tags collections
// @Accept  json
// @Produce  json
// @Param   request body dto.CollectionRequest true "Collection request"
// @Success 202 {object} dto.CollectionQueuedResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /collections [post]
func (h *CollectionHandler) EnqueueCollection(c echo.Context) error {
	var req dto.CollectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.WindowDays < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "window_days must not be negative"})
	}

	data := dto.StreamDataMarketCollector{Symbols: req.Symbols, WindowDays: req.WindowDays}
	if err := h.publisher.EnqueueCollection(c.Request().Context(), data); err != nil {
		h.logger.Error("Failed to enqueue collection task", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, dto.CollectionQueuedResponse{
		Stream:   common.RedisStreamMarketCollector,
		QueuedAt: utils.TimeNowJST(),
	})
}
