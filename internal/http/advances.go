package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/service"
)

type createAdvanceRequest struct {
	EmployeeID int64           `json:"employee_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Date       *model.Date     `json:"date" binding:"required"`
	Comment    *string         `json:"comment"`
}

type listAdvancesQuery struct {
	EmployeeID *int64 `form:"employee_id"`
	Month      string `form:"month"`
}

func (h *Handler) listAdvances(c *gin.Context) {
	var query listAdvancesQuery
	if !bindQuery(c, &query) {
		return
	}
	advances, err := h.services.Advances.List(c.Request.Context(), query.EmployeeID, query.Month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, advances)
}

func (h *Handler) createAdvance(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req createAdvanceRequest
	if !bindJSON(c, &req) {
		return
	}

	advance, err := h.services.Advances.Create(c.Request.Context(), service.CreateAdvanceInput{
		EmployeeID: req.EmployeeID,
		Amount:     req.Amount,
		Date:       *req.Date,
		Comment:    req.Comment,
	}, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, advance)
}

func (h *Handler) deleteAdvance(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Advances.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
