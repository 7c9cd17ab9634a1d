package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/pkg/uow"
)

type ProductRepository struct {
	db uow.DBTX
}

func NewProductRepository(db uow.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = "id, created_at, updated_at, name, description, price_cents, image, category, is_featured"

// FindByIDs возвращает товары по списку id. Отсутствующие id молча пропускаются -
// позиции корзины с удаленными товарами фильтрует вызывающая сторона.
func (p *ProductRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	rows, err := p.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, convertErr(err, "finding products by ids %v", ids)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var pr domain.Product
		scanErr := rows.Scan(
			&pr.ID, &pr.CreatedAt, &pr.UpdatedAt,
			&pr.Name, &pr.Description, &pr.PriceCents, &pr.Image, &pr.Category, &pr.IsFeatured,
		)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning product row")
		}
		products = append(products, pr)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "iterating product rows")
	}
	return products, nil
}
