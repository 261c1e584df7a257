package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/service"
)

type createSessionRequest struct {
	OperatorID  int64               `json:"operator_id" binding:"required"`
	MachineryID int64               `json:"machinery_id" binding:"required"`
	BuyerID     *int64              `json:"buyer_id"`
	StartAt     *time.Time          `json:"start_at" binding:"required"`
	HourlyRate  decimal.NullDecimal `json:"hourly_rate"`
	Notes       *string             `json:"notes"`
}

type closeSessionRequest struct {
	EndAt      *time.Time          `json:"end_at" binding:"required"`
	FuelLiters decimal.NullDecimal `json:"fuel_liters"`
}

type updateSessionRequest struct {
	OperatorID  *int64           `json:"operator_id"`
	MachineryID *int64           `json:"machinery_id"`
	BuyerID     *int64           `json:"buyer_id"`
	StartAt     *time.Time       `json:"start_at"`
	EndAt       *time.Time       `json:"end_at"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
	Notes       *string          `json:"notes"`
	FuelLiters  *decimal.Decimal `json:"fuel_liters"`
}

type listSessionsQuery struct {
	DateFrom    string `form:"date_from"`
	DateTo      string `form:"date_to"`
	OperatorID  *int64 `form:"operator_id"`
	MachineryID *int64 `form:"machinery_id"`
	Status      string `form:"status"`
	Page        int    `form:"page"`
	Size        int    `form:"size"`
}

func (h *Handler) listSessions(c *gin.Context) {
	h.respondSessions(c, false)
}

func (h *Handler) listOpenSessions(c *gin.Context) {
	h.respondSessions(c, true)
}

func (h *Handler) respondSessions(c *gin.Context, onlyOpen bool) {
	var query listSessionsQuery
	if !bindQuery(c, &query) {
		return
	}

	filter := model.SessionFilter{
		OperatorID:  query.OperatorID,
		MachineryID: query.MachineryID,
		OnlyOpen:    onlyOpen,
	}
	var err error
	if filter.DateFrom, err = optionalDate(query.DateFrom); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_from"})
		return
	}
	if filter.DateTo, err = optionalDate(query.DateTo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_to"})
		return
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status := model.SessionStatus(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filter.Status = &status
	}

	page, err := h.services.Sessions.List(c.Request.Context(), filter, model.PageRequest{Page: query.Page, Size: query.Size})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) createSession(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req createSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.services.Sessions.Create(c.Request.Context(), service.CreateSessionInput{
		OperatorID:  req.OperatorID,
		MachineryID: req.MachineryID,
		BuyerID:     req.BuyerID,
		StartAt:     *req.StartAt,
		HourlyRate:  req.HourlyRate,
		Notes:       req.Notes,
	}, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) closeSession(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req closeSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.services.Sessions.Close(c.Request.Context(), id, service.CloseSessionInput{
		EndAt:      *req.EndAt,
		FuelLiters: req.FuelLiters,
	}, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) updateSession(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.services.Sessions.Update(c.Request.Context(), id, service.SessionPatch{
		OperatorID:  req.OperatorID,
		MachineryID: req.MachineryID,
		BuyerID:     req.BuyerID,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		HourlyRate:  req.HourlyRate,
		Notes:       req.Notes,
		FuelLiters:  req.FuelLiters,
	}, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) deleteSession(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Sessions.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
