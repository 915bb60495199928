package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Abhishek0104/LamForGallery-sub001/internal/logging"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/repository"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/services"
	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

// Handler contains HTTP handlers for the gallery service REST API. The
// consent resolution endpoint is the inbound half of the consent broker:
// the out-of-band approval UI posts its verdict here.
type Handler struct {
	coordinator *services.ConsentCoordinator
	store       repository.GalleryStore
	logger      *logging.Logger
}

// NewHandler creates a new Handler with required dependencies.
func NewHandler(coordinator *services.ConsentCoordinator, store repository.GalleryStore, logger *logging.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		store:       store,
		logger:      logger,
	}
}

// RegisterHandlers mounts the REST routes on the given group.
func RegisterHandlers(g *echo.Group, h *Handler) {
	g.GET("/health", h.HandleHealth)
	g.POST("/consents/:token", h.HandleConsentResolution)
}

// HandleHealth returns basic health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	checks := map[string]string{"store": "ok"}
	status := "ok"
	if err := h.store.Ping(c.Request().Context()); err != nil {
		checks["store"] = err.Error()
		status = "degraded"
	}

	return c.JSON(http.StatusOK, models.HealthStatus{
		Status:    status,
		Service:   "gallery-agent",
		Version:   "1.0.0",
		Timestamp: time.Now(),
		Checks:    checks,
	})
}

// ConsentResolution is the request body of a consent verdict.
type ConsentResolution struct {
	Granted bool `json:"granted"`
}

// ConsentResolved is the response body of a processed verdict.
type ConsentResolved struct {
	Token    string `json:"token"`
	Granted  bool   `json:"granted"`
	Resolved bool   `json:"resolved"`
}

// HandleConsentResolution forwards a consent verdict to the coordinator.
// An unknown token (already consumed or expired) is a 404, which makes a
// duplicate verdict harmless.
func (h *Handler) HandleConsentResolution(c echo.Context) error {
	token := c.Param("token")

	var body ConsentResolution
	if err := c.Bind(&body); err != nil {
		return writeProblem(c, http.StatusBadRequest, "Malformed request body", err.Error())
	}

	err := h.coordinator.Resolve(c.Request().Context(), token, body.Granted)
	if err != nil {
		if errors.Is(err, models.ErrUnknownToken) {
			return writeProblem(c, http.StatusNotFound, "Unknown consent token", err.Error())
		}
		h.logger.Error("consent resolution failed: token=%s: %v", token, err)
		return writeProblem(c, http.StatusInternalServerError, "Consent resolution failed", err.Error())
	}

	return c.JSON(http.StatusOK, ConsentResolved{Token: token, Granted: body.Granted, Resolved: true})
}

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// writeProblem writes an RFC 7807 Problem Details JSON error response
func writeProblem(c echo.Context, status int, title, detail string) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
	return c.JSON(status, ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
