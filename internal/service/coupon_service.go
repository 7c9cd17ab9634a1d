package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/pkg/uow"
)

const (
	rewardCouponPrefix     = "GIFT"
	rewardCouponCodeLength = 6
	rewardDiscountPercent  = 10
	rewardCouponLifetime   = 30 * 24 * time.Hour
)

type CouponService struct {
	uow        uow.UOW
	couponRepo CouponRepository
}

func NewCouponService(u uow.UOW) (*CouponService, error) {
	couponRepo, err := uow.GetRepositoryAs[CouponRepository](u, uow.RepositoryName(repoargs.CouponRepoName))
	if err != nil {
		return nil, err
	}
	return &CouponService{
		uow:        u,
		couponRepo: couponRepo,
	}, nil
}

// FetchActive возвращает активный купон юзера или nil если купона нет. Срок
// годности здесь НЕ проверяется - это чистое чтение для отображения, ленивая
// проверка срока живет в Validate.
func (s *CouponService) FetchActive(ctx context.Context, userID int64) (*domain.Coupon, error) {
	coupon, err := s.couponRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err //nolint:wrapcheck
	}
	return coupon, nil
}

// Validate проверяет применимость купона. Просроченный купон гасится прямо здесь
// (побочный эффект читающего вызова - осознанное решение вместо фонового
// чистильщика) и возвращается domain.ErrCouponExpired; повторная проверка того же
// кода вернет уже domain.ErrRecordNotFound.
func (s *CouponService) Validate(ctx context.Context, userID int64, code string) (*domain.Coupon, error) {
	coupon, findErr := s.couponRepo.FindActiveByUserAndCode(ctx, userID, code)
	if findErr != nil {
		return nil, fmt.Errorf("validating coupon: %w", findErr)
	}

	if coupon.ExpiresAt.Before(time.Now()) {
		if deactivateErr := s.couponRepo.SetInactive(ctx, userID, code); deactivateErr != nil {
			return nil, fmt.Errorf("validating coupon: %w", deactivateErr)
		}
		return nil, fmt.Errorf("validating coupon %s: %w", code, domain.ErrCouponExpired)
	}

	return coupon, nil
}

// Deactivate гасит купон. Вызывается реконсиляцией заказа для потраченного купона.
func (s *CouponService) Deactivate(ctx context.Context, userID int64, code string) error {
	if err := s.couponRepo.SetInactive(ctx, userID, code); err != nil {
		return fmt.Errorf("deactivating coupon: %w", err)
	}
	return nil
}

// IssueReward выдает юзеру наградной купон: 10%, 30 дней. Существующий купон
// (активный или нет) предварительно удаляется - удаление и создание идут одной
// транзакцией, инвариант "максимум один купон на юзера" держит уникальный индекс.
func (s *CouponService) IssueReward(ctx context.Context, userID int64) (*domain.Coupon, error) {
	var coupon *domain.Coupon

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		couponRepo, repoErr := uow.GetAs[CouponRepository](tx, uow.RepositoryName(repoargs.CouponRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		if delErr := couponRepo.DeleteByUserID(c, userID); delErr != nil {
			return delErr //nolint:wrapcheck
		}

		var createErr error
		coupon, createErr = couponRepo.Create(c, repoargs.CreateCoupon{
			UserID:             userID,
			Code:               generateRewardCode(),
			DiscountPercentage: rewardDiscountPercent,
			ExpiresAt:          time.Now().Add(rewardCouponLifetime),
		})
		return createErr //nolint:wrapcheck
	})

	if txErr != nil {
		return nil, fmt.Errorf("issuing reward coupon: %w", txErr)
	}
	return coupon, nil
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func generateRewardCode() string {
	var b strings.Builder
	b.WriteString(rewardCouponPrefix)
	for i := 0; i < rewardCouponCodeLength; i++ {
		b.WriteByte(base36Alphabet[rand.Intn(len(base36Alphabet))]) //nolint:gosec
	}
	return strings.ToUpper(b.String())
}
