package service

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/internal/transport/payment"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UserRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type ProductRepository interface {
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

type CartRepository interface {
	AddItem(ctx context.Context, userID, productID int64) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, userID, productID int64, quantity int32) (*domain.CartItem, error)
	DeleteItem(ctx context.Context, userID, productID int64) error
	DeleteAll(ctx context.Context, userID int64) error
	GetProducts(ctx context.Context, userID int64) ([]repoargs.CartProduct, error)
}

type CouponRepository interface {
	Create(ctx context.Context, args repoargs.CreateCoupon) (*domain.Coupon, error)
	FindActiveByUserID(ctx context.Context, userID int64) (*domain.Coupon, error)
	FindActiveByUserAndCode(ctx context.Context, userID int64, code string) (*domain.Coupon, error)
	SetInactive(ctx context.Context, userID int64, code string) error
	DeleteByUserID(ctx context.Context, userID int64) error
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]repoargs.OrderView, error)
	GetAll(ctx context.Context) ([]repoargs.AdminOrderView, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatusType) error
}

// RefreshTokenStore кеш действующих refresh токенов, по одному на юзера.
type RefreshTokenStore interface {
	Set(ctx context.Context, userID int64, token string, ttl time.Duration) error
	Get(ctx context.Context, userID int64) (string, error)
	Del(ctx context.Context, userID int64) error
}

// PaymentClient клиент внешнего платежного процессора.
type PaymentClient interface {
	CreateCheckoutSession(ctx context.Context, params payment.SessionParams) (*payment.Session, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*payment.Session, error)
}

// CouponOps операции купонного движка, нужные оркестратору чекаута.
type CouponOps interface {
	IssueReward(ctx context.Context, userID int64) (*domain.Coupon, error)
	Deactivate(ctx context.Context, userID int64, code string) error
}
