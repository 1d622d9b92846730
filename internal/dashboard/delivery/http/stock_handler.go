package http

import (
	"errors"
	"net/http"
	"strings"

	"golang-stock-advisor/internal/dashboard/dto"
	"golang-stock-advisor/internal/dashboard/repository"
	"golang-stock-advisor/internal/dashboard/service"
	"golang-stock-advisor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StockHandler handles HTTP requests for the tracked stock universe.
type StockHandler struct {
	stockService     service.StockService
	dashboardService service.DashboardService
	logger           *logger.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService service.StockService, dashboardService service.DashboardService, logger *logger.Logger) *StockHandler {
	return &StockHandler{stockService: stockService, dashboardService: dashboardService, logger: logger}
}

// RegisterRoutes registers the stock routes to the Echo group. Mutations go
// through the auth middleware; reads stay open.
func (h *StockHandler) RegisterRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("", h.GetStocks)
	g.GET("/:ticker", h.GetStockDetail)
	g.POST("", h.CreateStock, auth)
	g.PUT("/:ticker", h.UpdateStock, auth)
	g.DELETE("/:ticker", h.DeleteStock, auth)
}

func (h *StockHandler) GetStocks(c echo.Context) error {
	stocks, err := h.stockService.GetStocks(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get stocks", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get stocks"})
	}
	return c.JSON(http.StatusOK, stocks)
}

func (h *StockHandler) GetStockDetail(c echo.Context) error {
	detail, err := h.dashboardService.GetStockDetail(c.Request().Context(), c.Param("ticker"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Failed to get stock detail", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get stock detail"})
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *StockHandler) CreateStock(c echo.Context) error {
	var req dto.CreateStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	stock, err := h.stockService.CreateStock(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrStockExists) {
			return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusCreated, stock)
}

func (h *StockHandler) UpdateStock(c echo.Context) error {
	var req dto.UpdateStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	stock, err := h.stockService.UpdateStock(c.Request().Context(), c.Param("ticker"), &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, stock)
}

func (h *StockHandler) DeleteStock(c echo.Context) error {
	if err := h.stockService.DeleteStock(c.Request().Context(), c.Param("ticker")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
