package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nurpe/logist-zp/internal/service"
)

type generatePayrollRequest struct {
	Month string `json:"month" binding:"required,yyyymm"`
}

type updateLineRequest struct {
	ManualCorrection *decimal.Decimal `json:"manual_correction"`
	IsPaid           *bool            `json:"is_paid"`
}

func (h *Handler) listPeriods(c *gin.Context) {
	periods, err := h.services.Payroll.ListPeriods(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, periods)
}

func (h *Handler) generatePayroll(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req generatePayrollRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.services.Payroll.Generate(c.Request.Context(), req.Month, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) closePeriod(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	period, err := h.services.Payroll.Close(c.Request.Context(), id, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

func (h *Handler) markPeriodPaid(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	period, err := h.services.Payroll.MarkPaid(c.Request.Context(), id, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

func (h *Handler) deletePeriod(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Payroll.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listLines(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	lines, err := h.services.Payroll.Lines(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *Handler) exportPayroll(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.services.Payroll.Export(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, xlsxContentType, result)
}

func (h *Handler) updateLine(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateLineRequest
	if !bindJSON(c, &req) {
		return
	}

	line, err := h.services.Payroll.UpdateLine(c.Request.Context(), id, service.LinePatch{
		ManualCorrection: req.ManualCorrection,
		IsPaid:           req.IsPaid,
	}, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}
