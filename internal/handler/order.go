package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// OrderHandler handles HTTP requests for freight orders.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrderRequest is the HTTP request body for creating an order.
type CreateOrderRequest struct {
	PickupName  string  `json:"pickup_name,omitempty"`
	PickupLat   float64 `json:"pickup_lat"`
	PickupLng   float64 `json:"pickup_lng"`
	DropoffName string  `json:"dropoff_name,omitempty"`
	DropoffLat  float64 `json:"dropoff_lat"`
	DropoffLng  float64 `json:"dropoff_lng"`
	CargoClass  string  `json:"cargo_class"` // DRY, FROZEN, FRAGILE, LIQUID
	WeightKg    float64 `json:"weight_kg"`
	VolumeM3    float64 `json:"volume_m3"`
	Priority    int     `json:"priority,omitempty"`
}

// OrderResponse is the HTTP representation of an order.
type OrderResponse struct {
	ID         string  `json:"id"`
	PickupName string  `json:"pickup_name,omitempty"`
	PickupLat  float64 `json:"pickup_lat"`
	PickupLng  float64 `json:"pickup_lng"`
	DropoffLat float64 `json:"dropoff_lat"`
	DropoffLng float64 `json:"dropoff_lng"`
	CargoClass string  `json:"cargo_class"`
	WeightKg   float64 `json:"weight_kg"`
	VolumeM3   float64 `json:"volume_m3"`
	Priority   int     `json:"priority"`
	Status     string  `json:"status"`
	TripID     string  `json:"trip_id,omitempty"`
}

func orderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID,
		PickupName: o.Pickup.Name,
		PickupLat:  o.Pickup.Lat,
		PickupLng:  o.Pickup.Lng,
		DropoffLat: o.Dropoff.Lat,
		DropoffLng: o.Dropoff.Lng,
		CargoClass: string(o.CargoClass),
		WeightKg:   o.WeightKg,
		VolumeM3:   o.VolumeM3,
		Priority:   o.Priority,
		Status:     string(o.Status),
		TripID:     o.TripID,
	}
}

// CreateOrder handles POST /v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &domain.Order{
		Pickup: domain.Location{
			Name: req.PickupName,
			Lat:  req.PickupLat,
			Lng:  req.PickupLng,
			Type: domain.LocationTypePickup,
		},
		Dropoff: domain.Location{
			Name: req.DropoffName,
			Lat:  req.DropoffLat,
			Lng:  req.DropoffLng,
			Type: domain.LocationTypeDelivery,
		},
		CargoClass: domain.CargoClass(req.CargoClass),
		WeightKg:   req.WeightKg,
		VolumeM3:   req.VolumeM3,
		Priority:   req.Priority,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, orderResponse(order))
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, orderResponse(order))
}

// GetAll handles GET /v1/orders
func (h *OrderHandler) GetAll(c *gin.Context) {
	var (
		orders []*domain.Order
		err    error
	)
	if status := c.Query("status"); status != "" {
		orders, err = h.orderService.GetOrdersByStatus(c.Request.Context(), domain.OrderStatus(status))
	} else {
		orders, err = h.orderService.GetAllOrders(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, orderResponse(o))
	}
	respondJSON(c, http.StatusOK, response)
}
