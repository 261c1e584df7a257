package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type putSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

func (h *Handler) getSetting(c *gin.Context) {
	setting, err := h.services.Settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (h *Handler) putSetting(c *gin.Context) {
	var req putSettingRequest
	if !bindJSON(c, &req) {
		return
	}
	setting, err := h.services.Settings.Put(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}
