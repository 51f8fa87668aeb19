package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/analyzer/service"
	"golang-swing-market/pkg/common"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/utils"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// EventHandler handles HTTP requests for event gate checks and schedule syncs.
type EventHandler struct {
	eventService service.EventGateService
	publisher    service.TaskPublisher
	logger       *logger.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService service.EventGateService, publisher service.TaskPublisher, logger *logger.Logger) *EventHandler {
	return &EventHandler{eventService: eventService, publisher: publisher, logger: logger}
}

// RegisterRoutes registers the event routes to the Echo group.
func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/check", h.CheckSymbol)
	g.POST("/sync", h.SyncSchedules)
}

// CheckSymbol godoc
// @Summary Check event calendar restrictions for a symbol
// @Description Evaluate earnings, ex-dividend, and SQ settlement proximity for entry/exit decisions
// @Tags events
// @Produce  json
// @Param   symbol  query   string  true   "Ticker symbol"
// @Param   date    query   string  false  "Check date (YYYY-MM-DD), defaults to today"
// @Param   pnl     query   number  false  "Unrealized PnL percent of an open position"
// @Success 200 {object} dto.EventCheckResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/check [get]
func (h *EventHandler) CheckSymbol(c echo.Context) error {
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required query parameter: symbol"})
	}

	var checkDate time.Time
	if dateStr := c.QueryParam("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, utils.GetJSTLocation())
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid date, expected YYYY-MM-DD"})
		}
		checkDate = parsed
	}

	var positionPnL *float64
	if pnlStr := c.QueryParam("pnl"); pnlStr != "" {
		pnl, err := strconv.ParseFloat(pnlStr, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid pnl, expected a number"})
		}
		positionPnL = utils.ToPointer(pnl)
	}

	result, err := h.eventService.CheckSymbol(c.Request().Context(), symbol, checkDate, positionPnL)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Unknown symbol"})
		}
		h.logger.Error("Failed to check event calendar", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// SyncSchedules godoc
// @Summary Enqueue an event schedule sync task
// @Description Queue a refresh of earnings and dividend schedules for the given symbols, or the whole universe when symbols is empty
// @Tags events
// @Accept  json
// @Produce  json
// @Param   request body dto.EventSyncRequest true "Sync request"
// @Success 202 {object} dto.CollectionQueuedResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/sync [post]
func (h *EventHandler) SyncSchedules(c echo.Context) error {
	var req dto.EventSyncRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	data := dto.StreamDataEventSync{Symbols: req.Symbols}
	if err := h.publisher.EnqueueEventSync(c.Request().Context(), data); err != nil {
		h.logger.Error("Failed to enqueue event sync task", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, dto.CollectionQueuedResponse{
		Stream:   common.RedisStreamEventSync,
		QueuedAt: utils.TimeNowJST(),
	})
}
