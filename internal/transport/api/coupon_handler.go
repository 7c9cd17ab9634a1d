package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	couponService CouponServicer
}

func NewCouponHandler(couponService CouponServicer) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

type CouponResponse struct {
	Code               string    `json:"code"`
	DiscountPercentage int32     `json:"discountPercentage"`
	ExpiresAt          time.Time `json:"expiresAt"`
}

// Show GET RouteGroup + CouponRoute. Активный купон текущего юзера; null если
// купона нет.
func (h *CouponHandler) Show(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	coupon, err := h.couponService.FetchActive(ctx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	if coupon == nil {
		c.JSON(http.StatusOK, gin.H{"coupon": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": CouponResponse{
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
		ExpiresAt:          coupon.ExpiresAt,
	}})
}

type CouponValidateParams struct {
	Code string `binding:"required,max=32" json:"code"`
}

// Validate POST RouteGroup + CouponValidateRoute. Проверяет применимость кода к
// текущему юзеру. Просроченный купон при проверке гасится.
func (h *CouponHandler) Validate(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params CouponValidateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	coupon, err := h.couponService.Validate(ctx, currentUserID, params.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "coupon not found"})
		case errors.Is(err, domain.ErrCouponExpired):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "coupon expired"})
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).
				SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "coupon is valid",
		"code":               coupon.Code,
		"discountPercentage": coupon.DiscountPercentage,
	})
}
