package http

import (
	"net/http"
	"strings"

	"golang-stock-advisor/internal/checkpoint"
	"golang-stock-advisor/internal/dashboard/dto"
	"golang-stock-advisor/internal/dashboard/service"
	"golang-stock-advisor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the overview board and the manual triggers.
type DashboardHandler struct {
	dashboardService service.DashboardService
	schedulerService service.SchedulerService
	logger           *logger.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService service.DashboardService, schedulerService service.SchedulerService, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, schedulerService: schedulerService, logger: logger}
}

// RegisterRoutes registers the dashboard and trigger routes. Triggers mutate
// downstream state, so they require auth.
func (h *DashboardHandler) RegisterRoutes(apiV1 *echo.Group, stocksGroup *echo.Group, auth echo.MiddlewareFunc) {
	apiV1.GET("/dashboard", h.GetDashboard)
	stocksGroup.GET("/:ticker/quote", h.GetQuote)
	stocksGroup.POST("/:ticker/analyze", h.TriggerAnalysis, auth)
	stocksGroup.POST("/:ticker/checkpoints/:type", h.TriggerCheckpointEval, auth)

	scans := apiV1.Group("/scans", auth)
	scans.POST("/news", h.TriggerNewsIngest)
	scans.POST("/catalyst", h.TriggerCatalystScan)
	scans.POST("/checkpoint", h.TriggerCheckpointScan)
}

func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	overview, err := h.dashboardService.GetOverview(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get dashboard overview", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get dashboard"})
	}
	return c.JSON(http.StatusOK, overview)
}

func (h *DashboardHandler) GetQuote(c echo.Context) error {
	ticker := strings.ToUpper(c.Param("ticker"))

	quote, err := h.dashboardService.GetQuote(c.Request().Context(), ticker)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Failed to fetch quote", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "Failed to fetch quote"})
	}
	return c.JSON(http.StatusOK, quote)
}

func (h *DashboardHandler) TriggerAnalysis(c echo.Context) error {
	ticker := c.Param("ticker")

	// Confirm the stock exists before queueing work for it.
	if _, err := h.dashboardService.GetStockDetail(c.Request().Context(), ticker); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	var req dto.TriggerAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}
	reason := req.Reason
	if reason == "" {
		reason = "manual"
	}

	if err := h.schedulerService.PublishFullAnalysis(c.Request().Context(), strings.ToUpper(ticker), reason); err != nil {
		h.logger.Error("Failed to queue analysis", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to queue analysis"})
	}

	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}

func (h *DashboardHandler) TriggerCheckpointEval(c echo.Context) error {
	ticker := strings.ToUpper(c.Param("ticker"))

	checkpointType, err := checkpoint.Parse(c.Param("type"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	if _, err := h.dashboardService.GetStockDetail(c.Request().Context(), ticker); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	if err := h.schedulerService.PublishCheckpointEval(c.Request().Context(), ticker, string(checkpointType)); err != nil {
		h.logger.Error("Failed to queue checkpoint evaluation", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to queue checkpoint evaluation"})
	}

	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}

func (h *DashboardHandler) TriggerNewsIngest(c echo.Context) error {
	if err := h.schedulerService.PublishNewsIngestAll(c.Request().Context()); err != nil {
		h.logger.Error("Failed to queue news ingest", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to queue news ingest"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}

func (h *DashboardHandler) TriggerCatalystScan(c echo.Context) error {
	if err := h.schedulerService.PublishCatalystScan(c.Request().Context(), "manual"); err != nil {
		h.logger.Error("Failed to queue catalyst scan", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to queue catalyst scan"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}

func (h *DashboardHandler) TriggerCheckpointScan(c echo.Context) error {
	if err := h.schedulerService.PublishCheckpointScan(c.Request().Context(), "manual"); err != nil {
		h.logger.Error("Failed to queue checkpoint scan", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to queue checkpoint scan"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}
