package api

import (
	"errors"
	"net/http"

	"ApexCore/internal/repository"
	"ApexCore/internal/usecase"
	xhttp "ApexCore/pkg/http"
	xlogger "ApexCore/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusEchoHandler exposes the engine's diagnostic surface. Read-only:
// nothing here can influence a trading decision.
type StatusEchoHandler struct {
	logger    *xlogger.Logger
	collector *usecase.BarCollector
	status    *repository.CacheStatusPublisher
	symbol    string
}

func NewStatusEchoHandler(logger *xlogger.Logger, collector *usecase.BarCollector, status *repository.CacheStatusPublisher, symbol string) *StatusEchoHandler {
	return &StatusEchoHandler{logger: logger, collector: collector, status: status, symbol: symbol}
}

func (h *StatusEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/health", h.Health)
}

type statusRequest struct {
	Symbol string `query:"symbol"`
}

// Status returns the latest engine snapshot for a symbol.
func (h *StatusEchoHandler) Status(c echo.Context) error {
	req := &statusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := req.Symbol
	if symbol == "" {
		symbol = h.symbol
	}

	st, err := h.status.Latest(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, repository.ErrNoStatus) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no snapshot for %s", symbol))
		}
		h.logger.Error("status read error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.SuccessResponse(c, st)
}

// Health reports feed connectivity. A kafka-fed instance has no direct
// connection to report on and is considered healthy when running.
func (h *StatusEchoHandler) Health(c echo.Context) error {
	connected := h.collector == nil || h.collector.IsConnected()
	body := map[string]interface{}{
		"feed_connected": connected,
	}
	code := http.StatusOK
	if !connected {
		code = http.StatusServiceUnavailable
	}
	return xhttp.DataResponse(c, code, body)
}
