package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type TokenServicer interface {
	Issue(ctx context.Context, user *domain.User) (*service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string) error
}

type CartServicer interface {
	Products(ctx context.Context, userID int64) ([]repoargs.CartProduct, error)
	Add(ctx context.Context, userID, productID int64) ([]repoargs.CartProduct, error)
	SetQuantity(ctx context.Context, userID, productID int64, quantity int32) ([]repoargs.CartProduct, error)
	Remove(ctx context.Context, userID, productID int64) ([]repoargs.CartProduct, error)
	Clear(ctx context.Context, userID int64) ([]repoargs.CartProduct, error)
}

type CouponServicer interface {
	FetchActive(ctx context.Context, userID int64) (*domain.Coupon, error)
	Validate(ctx context.Context, userID int64, code string) (*domain.Coupon, error)
}

type CheckoutServicer interface {
	CreateSession(
		ctx context.Context,
		userID int64,
		items []service.LineItem,
		couponCode string,
	) (*service.CheckoutSession, error)
	Reconcile(ctx context.Context, sessionID string) (*service.ReconcileResult, error)
}

type OrderServicer interface {
	GetByUserID(ctx context.Context, userID int64) ([]repoargs.OrderView, error)
	GetAll(ctx context.Context) ([]repoargs.AdminOrderView, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatusType) error
}
