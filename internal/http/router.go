package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nurpe/logist-zp/internal/config"
	"github.com/nurpe/logist-zp/internal/http/middleware"
	"github.com/nurpe/logist-zp/internal/metrics"
	"github.com/nurpe/logist-zp/internal/model"
)

// NewRouter builds the engine with the shared middleware chain. m may be nil.
func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, m *metrics.Metrics, cfg *config.Config) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, errors.New("gin binding validator is not go-playground/validator")
	}
	if err := registerValidators(v); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(handler.log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if m != nil {
		router.Use(m.Middleware())
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	handler.Register(router, authMiddleware)
	return router, nil
}

func registerValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("yyyymm", validateMonth); err != nil {
		return fmt.Errorf("register yyyymm validator: %w", err)
	}
	return nil
}

// validateMonth accepts exactly "YYYY-MM".
func validateMonth(fl validator.FieldLevel) bool {
	_, err := model.ParseMonth(fl.Field().String())
	return err == nil
}
