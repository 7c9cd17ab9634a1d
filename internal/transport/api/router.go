package api

import (
	"time"

	"github.com/fsdevblog/groph-store/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
	// PaymentServiceTimeout таймаут для роутов, ходящих к платежному процессору.
	PaymentServiceTimeout = 10 * time.Second
)

const (
	RouteGroup = "/api"

	SignupRoute       = "/auth/signup"
	LoginRoute        = "/auth/login"
	LogoutRoute       = "/auth/logout"
	RefreshTokenRoute = "/auth/refresh-token"
	ProfileRoute      = "/auth/profile"

	CartRoute     = "/cart"
	CartItemRoute = "/cart/:productId"

	CouponRoute         = "/coupon"
	CouponValidateRoute = "/coupon/validate"

	CheckoutSessionRoute = "/payment/create-checkout-session"
	CheckoutSuccessRoute = "/payment/checkout-success"

	UserOrdersRoute = "/order/user"
	OrdersRoute     = "/order"
)

type RouterArgs struct {
	Logger          *logrus.Logger
	UserService     UserServicer
	TokenService    TokenServicer
	CartService     CartServicer
	CouponService   CouponServicer
	CheckoutService CheckoutServicer
	OrderService    OrderServicer
	JWTAccessSecret []byte
	// ReleaseMode включает Secure флаг на аутентификационных куках.
	ReleaseMode bool
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService, args.TokenService, args.ReleaseMode)
	cartHandler := NewCartHandler(args.CartService)
	couponHandler := NewCouponHandler(args.CouponService)
	paymentHandler := NewPaymentHandler(args.CheckoutService)
	ordersHandler := NewOrdersHandler(args.OrderService)

	api := r.Group(RouteGroup)

	api.POST(SignupRoute, authHandler.Signup)
	api.POST(LoginRoute, authHandler.Login)
	api.POST(LogoutRoute, authHandler.Logout)
	api.POST(RefreshTokenRoute, authHandler.RefreshToken)

	api.Use(middlewares.AuthRequired(args.JWTAccessSecret))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(ProfileRoute, authHandler.Profile)

	api.GET(CartRoute, cartHandler.Index)
	api.POST(CartRoute, cartHandler.Add)
	api.DELETE(CartRoute, cartHandler.Clear)
	api.PUT(CartItemRoute, cartHandler.UpdateQuantity)
	api.DELETE(CartItemRoute, cartHandler.Remove)

	api.GET(CouponRoute, couponHandler.Show)
	api.POST(CouponValidateRoute, couponHandler.Validate)

	api.POST(CheckoutSessionRoute, paymentHandler.CreateSession)
	api.POST(CheckoutSuccessRoute, paymentHandler.CheckoutSuccess)

	api.GET(UserOrdersRoute, ordersHandler.Index)

	admin := api.Group("", middlewares.AdminRequired())
	admin.GET(OrdersRoute, ordersHandler.AdminIndex)
	admin.PUT(OrdersRoute, ordersHandler.UpdateStatus)

	return r
}
