// Package server exposes the digest over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/aidigest/internal/logger"
	"github.com/deusflow/aidigest/internal/metrics"
	"github.com/deusflow/aidigest/internal/model"
)

// InsightsService is what the handlers need from the digest service.
type InsightsService interface {
	GetInsights(ctx context.Context, raw string) *model.Dataset
	SaveInsights(ctx context.Context, ds *model.Dataset) bool
	AvailableDates(ctx context.Context) ([]model.DateEntry, error)
}

type saveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type handlers struct {
	svc     InsightsService
	metrics *metrics.Metrics
}

// NewRouter builds the gin engine with the API and monitoring routes.
func NewRouter(svc InsightsService, m *metrics.Metrics) *gin.Engine {
	if m == nil {
		m = metrics.Global
	}
	h := &handlers{svc: svc, metrics: m}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	attach(router.Group("/api"), h)

	// Monitoring
	router.GET("/metrics", h.getMetrics)

	return router
}

// attach registers the digest endpoints on group.
func attach(group *gin.RouterGroup, h *handlers) {
	group.GET("/insights", h.getInsights)
	group.POST("/insights", h.updateInsights)
	group.GET("/dates", h.getDates)
	group.GET("/health", h.health)
}

func (h *handlers) getInsights(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetInsights(c.Request.Context(), c.Query("date")))
}

func (h *handlers) updateInsights(c *gin.Context) {
	var ds model.Dataset
	if err := c.ShouldBindJSON(&ds); err != nil {
		c.JSON(http.StatusBadRequest, saveResponse{Success: false, Message: err.Error()})
		return
	}

	if !h.svc.SaveInsights(c.Request.Context(), &ds) {
		c.JSON(http.StatusInternalServerError, saveResponse{Success: false, Message: "数据更新失败"})
		return
	}
	c.JSON(http.StatusOK, saveResponse{Success: true, Message: "数据更新成功"})
}

func (h *handlers) getDates(c *gin.Context) {
	entries, err := h.svc.AvailableDates(c.Request.Context())
	if err != nil {
		logger.Warn("failed to list dates", "error", err)
		entries = []model.DateEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"dates": entries})
}

func (h *handlers) health(c *gin.Context) {
	if !h.metrics.Healthy() {
		stats := h.metrics.GetStats()
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":          "error",
			"message":         stats["last_error"],
			"last_error_time": stats["last_error_time"],
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "服务运行正常"})
}

func (h *handlers) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.GetStats())
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Serve runs router on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, router http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}
