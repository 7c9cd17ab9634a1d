package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/pkg/uow"
)

type CouponRepository struct {
	db uow.DBTX
}

func NewCouponRepository(db uow.DBTX) *CouponRepository {
	return &CouponRepository{db: db}
}

const couponColumns = "id, created_at, updated_at, code, discount_percentage, expires_at, is_active, user_id"

// Create создает купон. Уникальный индекс на user_id гарантирует не больше одного
// купона на юзера - при нарушении вернется domain.ErrDuplicateKey.
func (c *CouponRepository) Create(ctx context.Context, args repoargs.CreateCoupon) (*domain.Coupon, error) {
	row := c.db.QueryRow(ctx, `
		INSERT INTO coupons (code, discount_percentage, expires_at, is_active, user_id)
		VALUES ($1, $2, $3, TRUE, $4)
		RETURNING `+couponColumns,
		args.Code, args.DiscountPercentage, args.ExpiresAt, args.UserID,
	)
	coupon, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "creating coupon %s for user %d", args.Code, args.UserID)
	}
	return coupon, nil
}

// FindActiveByUserID возвращает активный купон юзера или domain.ErrRecordNotFound.
func (c *CouponRepository) FindActiveByUserID(ctx context.Context, userID int64) (*domain.Coupon, error) {
	row := c.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE user_id = $1 AND is_active`, userID)
	coupon, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "finding active coupon for user %d", userID)
	}
	return coupon, nil
}

// FindActiveByUserAndCode ищет активный купон по паре (юзер, код) - чужой или
// погашенный купон применить нельзя.
func (c *CouponRepository) FindActiveByUserAndCode(ctx context.Context, userID int64, code string) (*domain.Coupon, error) {
	row := c.db.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE user_id = $1 AND code = $2 AND is_active`,
		userID, code,
	)
	coupon, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "finding active coupon %s for user %d", code, userID)
	}
	return coupon, nil
}

// SetInactive гасит купон. Возвращает domain.ErrRecordNotFound если купона нет.
func (c *CouponRepository) SetInactive(ctx context.Context, userID int64, code string) error {
	tag, err := c.db.Exec(ctx,
		`UPDATE coupons SET is_active = FALSE, updated_at = now() WHERE user_id = $1 AND code = $2`,
		userID, code,
	)
	if err != nil {
		return convertErr(err, "deactivating coupon %s for user %d", code, userID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(domain.ErrRecordNotFound, "deactivating coupon %s for user %d", code, userID)
	}
	return nil
}

// DeleteByUserID удаляет купон юзера (любой, активный или нет). Отсутствие купона
// не ошибка - метод используется перед выдачей нового.
func (c *CouponRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	if _, err := c.db.Exec(ctx, `DELETE FROM coupons WHERE user_id = $1`, userID); err != nil {
		return convertErr(err, "deleting coupon of user %d", userID)
	}
	return nil
}

func scanCoupon(row rowScanner) (*domain.Coupon, error) {
	var coupon domain.Coupon
	err := row.Scan(
		&coupon.ID,
		&coupon.CreatedAt,
		&coupon.UpdatedAt,
		&coupon.Code,
		&coupon.DiscountPercentage,
		&coupon.ExpiresAt,
		&coupon.IsActive,
		&coupon.UserID,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &coupon, nil
}
