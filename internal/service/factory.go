package service

import (
	"fmt"

	"github.com/fsdevblog/groph-store/pkg/uow"
)

type AppServices struct {
	UserService     *UserService
	TokenService    *TokenService
	CartService     *CartService
	CouponService   *CouponService
	CheckoutService *CheckoutService
	OrderService    *OrderService
}

type FactoryArgs struct {
	RefreshStore  RefreshTokenStore
	PaymentClient PaymentClient
	AccessSecret  []byte
	RefreshSecret []byte
	ClientURL     string
}

func Factory(unitOfWork uow.UOW, args FactoryArgs) (*AppServices, error) {
	userService, userServiceErr := NewUserService(unitOfWork)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	tokenService := NewTokenService(args.RefreshStore, args.AccessSecret, args.RefreshSecret)

	cartService, cartServiceErr := NewCartService(unitOfWork)
	if cartServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", cartServiceErr.Error())
	}

	couponService, couponServiceErr := NewCouponService(unitOfWork)
	if couponServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", couponServiceErr.Error())
	}

	checkoutService, checkoutServiceErr := NewCheckoutService(
		unitOfWork, couponService, args.PaymentClient, args.ClientURL,
	)
	if checkoutServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", checkoutServiceErr.Error())
	}

	orderService, orderServiceErr := NewOrderService(unitOfWork)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	return &AppServices{
		UserService:     userService,
		TokenService:    tokenService,
		CartService:     cartService,
		CouponService:   couponService,
		CheckoutService: checkoutService,
		OrderService:    orderService,
	}, nil
}
