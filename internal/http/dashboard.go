package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/logist-zp/internal/model"
)

type fuelReportQuery struct {
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.services.Dashboard.Stats(c.Request.Context(), model.Today())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// fuelReport defaults to the current month up to today.
func (h *Handler) fuelReport(c *gin.Context) {
	var query fuelReportQuery
	if !bindQuery(c, &query) {
		return
	}

	today := model.Today()
	from, to := model.MonthOf(today).Start(), today
	if d, err := optionalDate(query.DateFrom); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_from"})
		return
	} else if d != nil {
		from = *d
	}
	if d, err := optionalDate(query.DateTo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_to"})
		return
	} else if d != nil {
		to = *d
	}

	rows, err := h.services.Dashboard.FuelReport(c.Request.Context(), from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) buyerPending(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	pending, err := h.services.Dashboard.BuyerPending(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}
