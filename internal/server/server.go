// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the verification engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/verify-engine/internal/logging"
	"github.com/pdiddy/verify-engine/pkg/types"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Verifier is the engine the server drives.
type Verifier interface {
	Verify(ctx context.Context, req types.VerificationRequest) types.VerificationResponse
	Mode() types.Mode
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message any    `json:"message,omitempty"`
}

// New builds the router: POST /api/v1/verify and GET /healthz.
func New(v Verifier, cfg types.ServerConfig, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	g := gin.New()
	g.Use(requestID(logger), accessLog(), gin.CustomRecovery(recovery))

	g.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	h := handler{verifier: v}
	g.GET("/healthz", h.health)
	v1 := g.Group("/api/v1")
	{
		v1.POST("/verify", h.verify)
	}
	return g
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

type handler struct {
	verifier Verifier
}

func (h handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": h.verifier.Mode()})
}

func (h handler) verify(c *gin.Context) {
	var req types.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorBody{Error: "VALIDATION_ERROR", Message: validationMessages(err)})
		return
	}
	if msgs := blankFields(req); len(msgs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorBody{Error: "VALIDATION_ERROR", Message: msgs})
		return
	}
	c.JSON(http.StatusOK, h.verifier.Verify(c.Request.Context(), req))
}

var jsonFieldNames = map[string]string{
	"Platform":  "platform",
	"SourceURL": "sourceUrl",
}

func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := jsonFieldNames[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		msgs = append(msgs, name+" must not be blank")
	}
	return msgs
}

// blankFields catches whitespace-only values, which binding accepts.
func blankFields(req types.VerificationRequest) []string {
	var msgs []string
	if strings.TrimSpace(req.Platform) == "" {
		msgs = append(msgs, "platform must not be blank")
	}
	if strings.TrimSpace(req.SourceURL) == "" {
		msgs = append(msgs, "sourceUrl must not be blank")
	}
	return msgs
}

func recovery(c *gin.Context, recovered any) {
	logging.FromContext(c.Request.Context(), nil).Error("panic serving request", zap.Any("panic", recovered))
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{Error: "INTERNAL_ERROR"})
}

// requestID assigns or propagates X-Request-ID and stores a request-scoped
// logger in the request context.
func requestID(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		l := base.With(zap.String("request_id", id))
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), l))
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.FromContext(c.Request.Context(), nil).Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
