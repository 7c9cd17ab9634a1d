package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/pkg/uow"
)

type CartService struct {
	cartRepo CartRepository
}

func NewCartService(u uow.UOW) (*CartService, error) {
	cartRepo, err := uow.GetRepositoryAs[CartRepository](u, uow.RepositoryName(repoargs.CartRepoName))
	if err != nil {
		return nil, err
	}
	return &CartService{cartRepo: cartRepo}, nil
}

// Products возвращает содержимое корзины с данными товаров из каталога.
func (s *CartService) Products(ctx context.Context, userID int64) ([]repoargs.CartProduct, error) {
	products, err := s.cartRepo.GetProducts(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return products, nil
}

// Add добавляет товар в корзину: новая позиция с количеством 1, либо +1 к
// существующей. Возвращает обновленное содержимое корзины.
func (s *CartService) Add(ctx context.Context, userID, productID int64) ([]repoargs.CartProduct, error) {
	if _, err := s.cartRepo.AddItem(ctx, userID, productID); err != nil {
		return nil, fmt.Errorf("adding product to cart: %w", err)
	}
	return s.Products(ctx, userID)
}

// SetQuantity перезаписывает количество позиции. Ноль удаляет позицию - количество
// меньше единицы в корзине не хранится. Для отсутствующей позиции возвращает
// domain.ErrRecordNotFound.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID int64, quantity int32) ([]repoargs.CartProduct, error) {
	if quantity == 0 {
		if err := s.cartRepo.DeleteItem(ctx, userID, productID); err != nil {
			return nil, fmt.Errorf("removing cart item: %w", err)
		}
		return s.Products(ctx, userID)
	}

	if _, err := s.cartRepo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		return nil, fmt.Errorf("updating cart quantity: %w", err)
	}
	return s.Products(ctx, userID)
}

// Remove удаляет одну позицию корзины.
func (s *CartService) Remove(ctx context.Context, userID, productID int64) ([]repoargs.CartProduct, error) {
	if err := s.cartRepo.DeleteItem(ctx, userID, productID); err != nil {
		return nil, fmt.Errorf("removing cart item: %w", err)
	}
	return s.Products(ctx, userID)
}

// Clear очищает корзину целиком (ручная очистка юзером; после успешной покупки
// корзину чистит реконсиляция заказа).
func (s *CartService) Clear(ctx context.Context, userID int64) ([]repoargs.CartProduct, error) {
	if err := s.cartRepo.DeleteAll(ctx, userID); err != nil {
		return nil, fmt.Errorf("clearing cart: %w", err)
	}
	return s.Products(ctx, userID)
}
