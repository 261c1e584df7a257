package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/logist-zp/internal/http/middleware"
	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/service"
)

// References groups the lookup table services exposed under their own paths.
type References struct {
	Employees    *service.ReferenceService[model.Employee]
	Carriers     *service.ReferenceService[model.Carrier]
	Buyers       *service.ReferenceService[model.Buyer]
	Materials    *service.ReferenceService[model.Material]
	Vehicles     *service.ReferenceService[model.Vehicle]
	Machinery    *service.ReferenceService[model.Machinery]
	ObjectPlaces *service.ReferenceService[model.ObjectPlace]
}

type Services struct {
	Trips      *service.TripService
	Sessions   *service.SessionService
	Acts       *service.ActService
	Payroll    *service.PayrollService
	Advances   *service.AdvanceService
	Dashboard  *service.DashboardService
	Settings   *service.SettingsService
	References References
}

type Handler struct {
	services Services
	ping     func(ctx context.Context) error
	log      zerolog.Logger
}

// NewHandler builds the API handler. ping backs the health check.
func NewHandler(services Services, ping func(ctx context.Context) error, log zerolog.Logger) *Handler {
	return &Handler{services: services, ping: ping, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	protected.GET("/trip-invoices", h.listTrips)
	protected.POST("/trip-invoices", h.createTrip)
	protected.PATCH("/trip-invoices/:id", h.updateTrip)
	protected.POST("/trip-invoices/:id/confirm", h.confirmTrip)
	protected.POST("/trip-invoices/:id/void", h.voidTrip)
	protected.DELETE("/trip-invoices/:id", h.deleteTrip)

	protected.GET("/machinery-sessions", h.listSessions)
	protected.GET("/machinery-sessions/open", h.listOpenSessions)
	protected.POST("/machinery-sessions", h.createSession)
	protected.PATCH("/machinery-sessions/:id", h.updateSession)
	protected.POST("/machinery-sessions/:id/close", h.closeSession)
	protected.DELETE("/machinery-sessions/:id", h.deleteSession)

	protected.GET("/delivery-acts", h.listActs)
	protected.POST("/delivery-acts", h.createAct)
	protected.GET("/delivery-acts/:id", h.getAct)
	protected.DELETE("/delivery-acts/:id", h.deleteAct)
	protected.GET("/delivery-acts/:id/export/pdf", h.exportActPDF)
	protected.GET("/delivery-acts/:id/export/excel", h.exportActExcel)

	protected.GET("/payroll/periods", h.listPeriods)
	protected.POST("/payroll/periods", h.generatePayroll)
	protected.POST("/payroll/periods/:id/close", h.closePeriod)
	protected.POST("/payroll/periods/:id/mark-paid", h.markPeriodPaid)
	protected.DELETE("/payroll/periods/:id", h.deletePeriod)
	protected.GET("/payroll/periods/:id/lines", h.listLines)
	protected.GET("/payroll/periods/:id/export", h.exportPayroll)
	protected.PATCH("/payroll/lines/:id", h.updateLine)

	protected.GET("/salary-advances", h.listAdvances)
	protected.POST("/salary-advances", h.createAdvance)
	protected.DELETE("/salary-advances/:id", h.deleteAdvance)

	protected.GET("/dashboard/stats", h.dashboardStats)
	protected.GET("/dashboard/fuel", h.fuelReport)
	protected.GET("/dashboard/buyers/:id/pending", h.buyerPending)

	refs := h.services.References
	registerReference(protected, adminOnly, "/employees", refs.Employees, h)
	registerReference(protected, adminOnly, "/carriers", refs.Carriers, h)
	registerReference(protected, adminOnly, "/buyers", refs.Buyers, h)
	registerReference(protected, adminOnly, "/materials", refs.Materials, h)
	registerReference(protected, adminOnly, "/vehicles", refs.Vehicles, h)
	registerReference(protected, adminOnly, "/machinery", refs.Machinery, h)
	registerReference(protected, adminOnly, "/object-places", refs.ObjectPlaces, h)

	protected.GET("/settings/:key", adminOnly, h.getSetting)
	protected.PUT("/settings/:key", adminOnly, h.putSetting)
}

func (h *Handler) health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			h.log.Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func principal(c *gin.Context) (model.Principal, bool) {
	p, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return p, ok
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// optionalDate parses a "YYYY-MM-DD" query value; empty means unset.
func optionalDate(raw string) (*model.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func sendFile(c *gin.Context, contentType string, result *service.ExportResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)
