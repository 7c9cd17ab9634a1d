package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartService CartServicer
}

func NewCartHandler(cartService CartServicer) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

type CartProductResponse struct {
	ProductID   int64   `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Quantity    int32   `json:"quantity"`
}

func newCartResponse(products []repoargs.CartProduct) []CartProductResponse {
	resp := make([]CartProductResponse, len(products))
	for i, p := range products {
		resp[i] = CartProductResponse{
			ProductID:   p.ProductID,
			Name:        p.Name,
			Description: p.Description,
			Price:       centsToAmount(p.PriceCents),
			Image:       p.Image,
			Category:    p.Category,
			Quantity:    p.Quantity,
		}
	}
	return resp
}

// Index GET RouteGroup + CartRoute. Содержимое корзины текущего юзера.
func (h *CartHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := h.cartService.Products(ctx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newCartResponse(products))
}

type CartAddParams struct {
	ProductID int64 `binding:"required" json:"productId"`
}

// Add POST RouteGroup + CartRoute. Кладет товар в корзину: новая позиция с
// количеством 1 либо +1 к существующей.
func (h *CartHandler) Add(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params CartAddParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := h.cartService.Add(ctx, currentUserID, params.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newCartResponse(products))
}

type CartQuantityParams struct {
	// Quantity ноль удаляет позицию, поэтому required тут не годится.
	Quantity *int32 `binding:"required,gte=0" json:"quantity"`
}

// UpdateQuantity PUT RouteGroup + CartItemRoute. Перезаписывает количество
// позиции; ноль удаляет позицию.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	productID, parseErr := strconv.ParseInt(c.Param("productId"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var params CartQuantityParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := h.cartService.SetQuantity(ctx, currentUserID, productID, *params.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "product not found in cart"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newCartResponse(products))
}

// Remove DELETE RouteGroup + CartItemRoute. Удаляет одну позицию корзины.
func (h *CartHandler) Remove(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	productID, parseErr := strconv.ParseInt(c.Param("productId"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := h.cartService.Remove(ctx, currentUserID, productID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "product not found in cart"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newCartResponse(products))
}

// Clear DELETE RouteGroup + CartRoute. Очищает корзину целиком.
func (h *CartHandler) Clear(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := h.cartService.Clear(ctx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newCartResponse(products))
}
