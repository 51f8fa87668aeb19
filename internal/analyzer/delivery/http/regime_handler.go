package http

import (
	"net/http"
	"time"

	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/analyzer/service"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/utils"

	"github.com/labstack/echo/v4"
)

// RegimeHandler handles HTTP requests for market regime classifications.
type RegimeHandler struct {
	regimeService service.MarketRegimeService
	logger        *logger.Logger
}

// NewRegimeHandler creates a new RegimeHandler.
func NewRegimeHandler(regimeService service.MarketRegimeService, logger *logger.Logger) *RegimeHandler {
	return &RegimeHandler{regimeService: regimeService, logger: logger}
}

// RegisterRoutes registers the regime routes to the Echo group.
func (h *RegimeHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/latest", h.GetLatestRegime)
	g.POST("/analyze", h.AnalyzeRegime)
}

// GetLatestRegime godoc
// @Summary Get the latest market regime
// @Description Get the most recently persisted market regime snapshot
// @Tags regimes
// @Produce  json
// @Success 200 {object} entity.MarketRegimeSnapshot
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /regimes/latest [get]
func (h *RegimeHandler) GetLatestRegime(c echo.Context) error {
	snapshot, err := h.regimeService.GetLatest(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get latest regime", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get latest regime"})
	}
	if snapshot == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No regime snapshot yet"})
	}
	return c.JSON(http.StatusOK, snapshot)
}

// AnalyzeRegime godoc
// @Summary Run a market regime analysis
// @Description Classify the current market regime from stored index bars and universe closes
// @Tags regimes
// @Accept  json
// @Produce  json
// @Param   request  body    dto.AnalyzeRegimeRequest   true    "Analysis parameters"
// @Success 200 {object} dto.MarketRegimeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /regimes/analyze [post]
func (h *RegimeHandler) AnalyzeRegime(c echo.Context) error {
	var req dto.AnalyzeRegimeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	var asOf time.Time
	if req.AnalysisDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.AnalysisDate, utils.GetJSTLocation())
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid analysis_date, expected YYYY-MM-DD"})
		}
		asOf = parsed
	}

	regime, err := h.regimeService.RunAnalysis(c.Request().Context(), asOf, req.Notify)
	if err != nil {
		h.logger.Error("Failed to run regime analysis", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, dto.NewMarketRegimeResponse(*regime))
}
