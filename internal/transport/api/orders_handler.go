package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/gin-gonic/gin"
)

type OrdersHandler struct {
	orderService OrderServicer
}

func NewOrdersHandler(orderService OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderService: orderService,
	}
}

type OrderItemResponse struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Quantity  int32   `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderResponse struct {
	ID           int64                  `json:"id"`
	CreatedAt    time.Time              `json:"createdAt"`
	TrackingCode string                 `json:"trackingCode"`
	Status       domain.OrderStatusType `json:"status"`
	TotalAmount  float64                `json:"totalAmount"`
	Items        []OrderItemResponse    `json:"items"`
}

type AdminOrderResponse struct {
	OrderResponse
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

func newOrderItemsResponse(items []repoargs.OrderItemView) []OrderItemResponse {
	resp := make([]OrderItemResponse, len(items))
	for i, item := range items {
		resp[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     centsToAmount(item.PriceCents),
		}
	}
	return resp
}

func newOrderResponse(view repoargs.OrderView) OrderResponse {
	return OrderResponse{
		ID:           view.Order.ID,
		CreatedAt:    view.Order.CreatedAt,
		TrackingCode: view.Order.TrackingCode,
		Status:       view.Order.Status,
		TotalAmount:  centsToAmount(view.Order.TotalCents),
		Items:        newOrderItemsResponse(view.Items),
	}
}

// Index GET RouteGroup + UserOrdersRoute. Заказы текущего юзера.
func (h *OrdersHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	views, err := h.orderService.GetByUserID(ctx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	resp := make([]OrderResponse, len(views))
	for i, view := range views {
		resp[i] = newOrderResponse(view)
	}
	c.JSON(http.StatusOK, resp)
}

// AdminIndex GET RouteGroup + OrdersRoute. Все заказы с данными владельцев.
// Только для админов.
func (h *OrdersHandler) AdminIndex(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	views, err := h.orderService.GetAll(ctx)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	resp := make([]AdminOrderResponse, len(views))
	for i, view := range views {
		resp[i] = AdminOrderResponse{
			OrderResponse: newOrderResponse(repoargs.OrderView{Order: view.Order, Items: view.Items}),
			UserName:      view.UserName,
			UserEmail:     view.UserEmail,
		}
	}
	c.JSON(http.StatusOK, resp)
}

type OrderStatusParams struct {
	OrderID int64                  `binding:"required" json:"orderId"`
	Status  domain.OrderStatusType `binding:"required" json:"status"`
}

// UpdateStatus PUT RouteGroup + OrdersRoute. Перевод заказа в новый статус.
// Только для админов.
func (h *OrdersHandler) UpdateStatus(c *gin.Context) {
	var params OrderStatusParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	if !params.Status.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid order status"})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.orderService.UpdateStatus(ctx, params.OrderID, params.Status); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order status updated"})
}
