package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fsdevblog/groph-store/internal/cache"
	"github.com/fsdevblog/groph-store/internal/config"
	"github.com/fsdevblog/groph-store/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/internal/service"
	"github.com/fsdevblog/groph-store/internal/transport/api"
	"github.com/fsdevblog/groph-store/internal/transport/payment"
	"github.com/fsdevblog/groph-store/pkg/uow"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app on %s", a.Config.RunAddress)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	redisClient, redisErr := cache.Connect(notifyCtx, a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisDB)
	if redisErr != nil {
		return fmt.Errorf("app run: %s", redisErr.Error())
	}
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			a.Logger.WithError(closeErr).Warn("closing redis client")
		}
	}()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	services, sErr := service.Factory(unitOfWork, service.FactoryArgs{
		RefreshStore:  cache.NewRefreshTokenStore(redisClient),
		PaymentClient: payment.New(a.Config.PaymentAPIURL, a.Config.PaymentAPIKey),
		AccessSecret:  []byte(a.Config.JWTAccessSecret),
		RefreshSecret: []byte(a.Config.JWTRefreshSecret),
		ClientURL:     a.Config.ClientURL,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:          a.Logger,
		UserService:     services.UserService,
		TokenService:    services.TokenService,
		CartService:     services.CartService,
		CouponService:   services.CouponService,
		CheckoutService: services.CheckoutService,
		OrderService:    services.OrderService,
		JWTAccessSecret: []byte(a.Config.JWTAccessSecret),
		ReleaseMode:     a.Config.ReleaseMode,
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName:    func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewUserRepository(dbtx) },
		repoargs.ProductRepoName: func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewProductRepository(dbtx) },
		repoargs.CartRepoName:    func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewCartRepository(dbtx) },
		repoargs.CouponRepoName:  func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewCouponRepository(dbtx) },
		repoargs.OrderRepoName:   func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewOrderRepository(dbtx) },
	}

	for name, factoryFn := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factoryFn); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
