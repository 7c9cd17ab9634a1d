package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/service"
	"github.com/fsdevblog/groph-store/internal/transport/payment"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	checkoutService CheckoutServicer
}

func NewPaymentHandler(checkoutService CheckoutServicer) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
	}
}

type CheckoutProductParams struct {
	ProductID int64 `binding:"required"       json:"productId"`
	Quantity  int32 `binding:"required,gte=1" json:"quantity"`
	// Price цена в основных единицах валюты, внутрь конвертируется в центы.
	Price decimal.Decimal `binding:"required" json:"price"`
}

type CheckoutSessionParams struct {
	Products   []CheckoutProductParams `json:"products"`
	CouponCode string                  `binding:"max=32" json:"couponCode"`
}

// CreateSession POST RouteGroup + CheckoutSessionRoute. Создает платежную сессию
// у процессора и возвращает её id вместе с итоговой суммой.
func (h *PaymentHandler) CreateSession(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params CheckoutSessionParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	items := make([]service.LineItem, len(params.Products))
	for i, p := range params.Products {
		items[i] = service.LineItem{
			ProductID:  p.ProductID,
			PriceCents: amountToCents(p.Price),
			Quantity:   p.Quantity,
		}
	}

	ctx, cancel := context.WithTimeout(c, PaymentServiceTimeout)
	defer cancel()

	session, err := h.checkoutService.CreateSession(ctx, currentUserID, items, params.CouponCode)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid or empty products array"})
		case errors.Is(err, domain.ErrRecordNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "product not found"})
		default:
			h.abortWithPaymentError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          session.SessionID,
		"url":         session.URL,
		"totalAmount": centsToAmount(session.TotalCents),
	})
}

type CheckoutSuccessParams struct {
	SessionID string `binding:"required" json:"sessionId"`
}

// CheckoutSuccess POST RouteGroup + CheckoutSuccessRoute. Сверяет оплату с
// процессором и создает заказ. Повторный вызов с тем же sessionId безопасен и
// возвращает уже созданный заказ.
func (h *PaymentHandler) CheckoutSuccess(c *gin.Context) {
	var params CheckoutSuccessParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, PaymentServiceTimeout)
	defer cancel()

	result, err := h.checkoutService.Reconcile(ctx, params.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMetadata) {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid session metadata"})
			return
		}
		h.abortWithPaymentError(c, err)
		return
	}

	message := "payment successful, order created"
	if result.AlreadyProcessed {
		message = "order already processed"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      message,
		"orderId":      result.OrderID,
		"trackingCode": result.TrackingCode,
	})
}

// abortWithPaymentError ошибки самого процессора транслируются как 502, все
// остальное - обычные 500.
func (h *PaymentHandler) abortWithPaymentError(c *gin.Context, err error) {
	var statusErr *payment.StatusCodeError
	if errors.As(err, &statusErr) {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "payment provider error"})
		return
	}
	_ = c.AbortWithError(http.StatusInternalServerError, err).
		SetType(gin.ErrorTypePrivate)
}
