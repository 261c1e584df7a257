package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/service"
)

type createActRequest struct {
	BuyerID   int64       `json:"buyer_id" binding:"required"`
	StartDate *model.Date `json:"start_date" binding:"required"`
	EndDate   *model.Date `json:"end_date" binding:"required"`
}

type listActsQuery struct {
	BuyerID *int64 `form:"buyer_id"`
	Page    int    `form:"page"`
	Size    int    `form:"size"`
}

func (h *Handler) listActs(c *gin.Context) {
	var query listActsQuery
	if !bindQuery(c, &query) {
		return
	}
	page, err := h.services.Acts.List(c.Request.Context(), query.BuyerID, model.PageRequest{Page: query.Page, Size: query.Size})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) createAct(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req createActRequest
	if !bindJSON(c, &req) {
		return
	}

	act, err := h.services.Acts.Create(c.Request.Context(), service.CreateActInput{
		BuyerID:   req.BuyerID,
		StartDate: *req.StartDate,
		EndDate:   *req.EndDate,
		Principal: actor,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, act)
}

func (h *Handler) getAct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	doc, err := h.services.Acts.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) deleteAct(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Acts.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportActPDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.services.Acts.ExportPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, pdfContentType, result)
}

func (h *Handler) exportActExcel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.services.Acts.ExportExcel(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, xlsxContentType, result)
}
