// Package adminapi exposes the engine and store to presentation code
// over a local HTTP surface. It is the only layer that reads the wall
// clock for display evaluation.
package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/despensa-app/despensa/internal/records"
)

// Handler carries the record service into the echo handlers.
type Handler struct {
	svc *records.Service
}

func NewHandler(svc *records.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the record CRUD and catalog endpoints.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/overview", h.overview)
	g.GET("/records", h.listRecords)
	g.GET("/records/export", h.exportRecords)
	g.GET("/records/:id", h.getRecord)
	g.POST("/records", h.createRecord)
	g.PUT("/records/:id", h.updateRecord)
	g.DELETE("/records/:id", h.deleteRecord)
	g.POST("/preview", h.previewExpiry)
	g.GET("/categories", h.listCategories)
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, apiError{Code: code, Message: message, Detail: detail})
}
