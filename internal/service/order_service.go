package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/pkg/uow"
)

type OrderService struct {
	orderRepo OrderRepository
}

func NewOrderService(u uow.UOW) (*OrderService, error) {
	orderRepo, err := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err
	}
	return &OrderService{orderRepo: orderRepo}, nil
}

// GetByUserID возвращает заказы юзера со строками, обогащенными данными товаров.
func (s *OrderService) GetByUserID(ctx context.Context, userID int64) ([]repoargs.OrderView, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// GetAll возвращает все заказы с данными владельцев. Админская выборка.
func (s *OrderService) GetAll(ctx context.Context) ([]repoargs.AdminOrderView, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// UpdateStatus переводит заказ в новый статус. Статус проверяется на
// допустимость; несуществующий заказ - domain.ErrRecordNotFound.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatusType) error {
	if !status.Valid() {
		return fmt.Errorf("updating order status: unknown status %q", status)
	}
	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}
	return nil
}
