package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyoiwyget/ai-services/internal/domain"
	"github.com/wyoiwyget/ai-services/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	matching     *usecase.MatchingService
	avatars      *usecase.AvatarService
	tryon        *usecase.TryOnService
	tasks        *usecase.TaskTracker
	measurements *usecase.MeasurementService
}

// NewHandler creates a new HTTP handler
func NewHandler(matching *usecase.MatchingService, avatars *usecase.AvatarService, tryon *usecase.TryOnService, tasks *usecase.TaskTracker, measurements *usecase.MeasurementService) *Handler {
	return &Handler{
		matching:     matching,
		avatars:      avatars,
		tryon:        tryon,
		tasks:        tasks,
		measurements: measurements,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "wyoiwyget-ai-services",
		"version": "1.0.0",
	})
}

type matchRequest struct {
	ProductURL      string            `json:"product_url" binding:"required,url"`
	TargetPlatforms []string          `json:"target_platforms"`
	Criteria        map[string]string `json:"matching_criteria"`
}

// MatchProducts finds equivalent products across platforms for a source URL.
func (h *Handler) MatchProducts(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	platforms := toPlatforms(req.TargetPlatforms)
	if len(platforms) == 0 {
		platforms = domain.SupportedPlatforms
	}

	result, err := h.matching.FindMatches(c.Request.Context(), currentUser(c), req.ProductURL, platforms, req.Criteria)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type comparePricesRequest struct {
	ProductID string   `json:"product_id" binding:"required"`
	Platforms []string `json:"platforms"`
}

// ComparePrices returns per-platform prices and summary statistics.
func (h *Handler) ComparePrices(c *gin.Context) {
	var req comparePricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	platforms := toPlatforms(req.Platforms)
	if len(platforms) == 0 {
		platforms = domain.SupportedPlatforms
	}

	comparison, err := h.matching.ComparePrices(c.Request.Context(), req.ProductID, platforms)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// GetMatchResult returns one recently computed match result by id.
func (h *Handler) GetMatchResult(c *gin.Context) {
	result, err := h.matching.GetMatchResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMatchHistory returns the user's recent match results.
func (h *Handler) GetMatchHistory(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	results, err := h.matching.GetMatchHistory(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": results})
}

// GetPriceHistory returns a product's tracked prices on one platform.
func (h *Handler) GetPriceHistory(c *gin.Context) {
	platform := domain.Platform(c.Query("platform"))
	days := intQuery(c, "days", 30)
	since := time.Now().AddDate(0, 0, -days)

	points, err := h.matching.GetPriceHistory(c.Request.Context(), c.Param("id"), platform, since)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price_history": points})
}

// GenerateAvatar starts avatar generation and returns the task id.
func (h *Handler) GenerateAvatar(c *gin.Context) {
	var req domain.AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = currentUser(c)

	taskID, err := h.avatars.StartGeneration(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID, "status": domain.TaskProcessing})
}

// GetAvatar returns one of the user's avatars.
func (h *Handler) GetAvatar(c *gin.Context) {
	avatar, err := h.avatars.GetAvatar(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, avatar)
}

// ListAvatars returns all of the user's avatars.
func (h *Handler) ListAvatars(c *gin.Context) {
	avatars, err := h.avatars.ListAvatars(c.Request.Context(), currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

// DeleteAvatar removes an avatar and its stored image.
func (h *Handler) DeleteAvatar(c *gin.Context) {
	if err := h.avatars.DeleteAvatar(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StartTryOn starts a virtual try-on render and returns the task id.
func (h *Handler) StartTryOn(c *gin.Context) {
	var req domain.TryOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = currentUser(c)

	taskID, err := h.tryon.StartTryOn(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID, "status": domain.TaskProcessing})
}

// GetTryOnHistory returns the user's try-on results.
func (h *Handler) GetTryOnHistory(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	results, err := h.tryon.GetTryOnHistory(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type predictFitRequest struct {
	AvatarID  string `json:"avatar_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
}

// PredictFit analyzes how a product would fit the user's avatar.
func (h *Handler) PredictFit(c *gin.Context) {
	var req predictFitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.tryon.PredictFit(c.Request.Context(), currentUser(c), req.AvatarID, req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prediction)
}

// EstimateMeasurements derives body measurements from basic parameters.
func (h *Handler) EstimateMeasurements(c *gin.Context) {
	var req domain.MeasurementEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	estimate, err := h.measurements.Estimate(&req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

// GetTaskStatus returns one of the user's tasks by id.
func (h *Handler) GetTaskStatus(c *gin.Context) {
	task, err := h.tasks.GetStatus(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ListTasks returns all of the user's tasks, newest first.
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.tasks.ListByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// DeleteTask removes one of the user's tasks, cancelling it if running.
func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps domain errors onto HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrExtractionFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTaskNotFound), errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTaskTerminal):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func toPlatforms(names []string) []domain.Platform {
	platforms := make([]domain.Platform, 0, len(names))
	for _, n := range names {
		platforms = append(platforms, domain.Platform(n))
	}
	return platforms
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
