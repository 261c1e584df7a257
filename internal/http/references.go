package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/logist-zp/internal/service"
)

type referenceHandler[T any] struct {
	svc *service.ReferenceService[T]
	h   *Handler
}

// registerReference mounts list/get for every role and admin-gated writes.
// Delete deactivates the row.
func registerReference[T any](group *gin.RouterGroup, adminOnly gin.HandlerFunc, path string, svc *service.ReferenceService[T], h *Handler) {
	if svc == nil {
		return
	}
	rh := &referenceHandler[T]{svc: svc, h: h}
	group.GET(path, rh.list)
	group.GET(path+"/:id", rh.get)
	group.POST(path, adminOnly, rh.create)
	group.PUT(path+"/:id", adminOnly, rh.update)
	group.DELETE(path+"/:id", adminOnly, rh.deactivate)
}

func (r *referenceHandler[T]) list(c *gin.Context) {
	var active *bool
	if raw := c.Query("active"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid active"})
			return
		}
		active = &value
	}
	items, err := r.svc.List(c.Request.Context(), active)
	if err != nil {
		r.h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (r *referenceHandler[T]) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := r.svc.Get(c.Request.Context(), id)
	if err != nil {
		r.h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r *referenceHandler[T]) create(c *gin.Context) {
	var item T
	if !bindJSON(c, &item) {
		return
	}
	created, err := r.svc.Create(c.Request.Context(), &item)
	if err != nil {
		r.h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (r *referenceHandler[T]) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var item T
	if !bindJSON(c, &item) {
		return
	}
	updated, err := r.svc.Update(c.Request.Context(), id, &item)
	if err != nil {
		r.h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (r *referenceHandler[T]) deactivate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := r.svc.Deactivate(c.Request.Context(), id); err != nil {
		r.h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
