package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/service"
)

type createTripRequest struct {
	TripDate      *model.Date         `json:"trip_date" binding:"required"`
	DriverID      int64               `json:"driver_id" binding:"required"`
	VehicleID     int64               `json:"vehicle_id" binding:"required"`
	CarrierID     int64               `json:"carrier_id" binding:"required"`
	BuyerID       int64               `json:"buyer_id" binding:"required"`
	MaterialID    int64               `json:"material_id" binding:"required"`
	PlaceID       *int64              `json:"place_id"`
	InvoiceNumber *string             `json:"invoice_number"`
	FuelLiters    decimal.NullDecimal `json:"fuel_liters"`
	VolumeM3      decimal.NullDecimal `json:"volume_m3"`
}

type updateTripRequest struct {
	TripDate      *model.Date      `json:"trip_date"`
	DriverID      *int64           `json:"driver_id"`
	VehicleID     *int64           `json:"vehicle_id"`
	CarrierID     *int64           `json:"carrier_id"`
	BuyerID       *int64           `json:"buyer_id"`
	MaterialID    *int64           `json:"material_id"`
	PlaceID       *int64           `json:"place_id"`
	InvoiceNumber *string          `json:"invoice_number"`
	FuelLiters    *decimal.Decimal `json:"fuel_liters"`
	VolumeM3      *decimal.Decimal `json:"volume_m3"`
}

type listTripsQuery struct {
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	DriverID  *int64 `form:"driver_id"`
	CarrierID *int64 `form:"carrier_id"`
	BuyerID   *int64 `form:"buyer_id"`
	Status    string `form:"status"`
	Page      int    `form:"page"`
	Size      int    `form:"size"`
}

func (h *Handler) listTrips(c *gin.Context) {
	var query listTripsQuery
	if !bindQuery(c, &query) {
		return
	}

	filter := model.TripFilter{
		DriverID:  query.DriverID,
		CarrierID: query.CarrierID,
		BuyerID:   query.BuyerID,
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
		status := model.TripStatus(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filter.Status = &status
	}

	page, err := h.services.Trips.List(c.Request.Context(), filter, model.PageRequest{Page: query.Page, Size: query.Size})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) createTrip(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req createTripRequest
	if !bindJSON(c, &req) {
		return
	}

	trip, err := h.services.Trips.Create(c.Request.Context(), service.CreateTripInput{
		TripDate:      *req.TripDate,
		DriverID:      req.DriverID,
		VehicleID:     req.VehicleID,
		CarrierID:     req.CarrierID,
		BuyerID:       req.BuyerID,
		MaterialID:    req.MaterialID,
		PlaceID:       req.PlaceID,
		InvoiceNumber: req.InvoiceNumber,
		FuelLiters:    req.FuelLiters,
		VolumeM3:      req.VolumeM3,
	}, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *Handler) updateTrip(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateTripRequest
	if !bindJSON(c, &req) {
		return
	}

	trip, err := h.services.Trips.Update(c.Request.Context(), id, service.TripPatch{
		TripDate:      req.TripDate,
		DriverID:      req.DriverID,
		VehicleID:     req.VehicleID,
		CarrierID:     req.CarrierID,
		BuyerID:       req.BuyerID,
		MaterialID:    req.MaterialID,
		PlaceID:       req.PlaceID,
		InvoiceNumber: req.InvoiceNumber,
		FuelLiters:    req.FuelLiters,
		VolumeM3:      req.VolumeM3,
	}, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) confirmTrip(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	trip, err := h.services.Trips.Confirm(c.Request.Context(), id, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) voidTrip(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	trip, err := h.services.Trips.Void(c.Request.Context(), id, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) deleteTrip(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Trips.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
