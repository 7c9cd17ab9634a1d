package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/pkg/uow"
)

type CartRepository struct {
	db uow.DBTX
}

func NewCartRepository(db uow.DBTX) *CartRepository {
	return &CartRepository{db: db}
}

const cartItemColumns = "id, created_at, updated_at, user_id, product_id, quantity"

// AddItem атомарно добавляет товар в корзину: вставка новой позиции с количеством 1
// либо инкремент существующей. Upsert выполняется одним запросом, поэтому
// конкурентные добавления одного товара не теряются.
func (c *CartRepository) AddItem(ctx context.Context, userID, productID int64) (*domain.CartItem, error) {
	row := c.db.QueryRow(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + 1, updated_at = now()
		RETURNING `+cartItemColumns,
		userID, productID,
	)
	item, err := scanCartItem(row)
	if err != nil {
		return nil, convertErr(err, "adding product %d to cart of user %d", productID, userID)
	}
	return item, nil
}

// SetQuantity перезаписывает количество существующей позиции. Возвращает
// domain.ErrRecordNotFound если позиции нет. Нулевое количество сюда не попадает -
// оно означает удаление позиции (DeleteItem).
func (c *CartRepository) SetQuantity(ctx context.Context, userID, productID int64, quantity int32) (*domain.CartItem, error) {
	row := c.db.QueryRow(ctx, `
		UPDATE cart_items SET quantity = $3, updated_at = now()
		WHERE user_id = $1 AND product_id = $2
		RETURNING `+cartItemColumns,
		userID, productID, quantity,
	)
	item, err := scanCartItem(row)
	if err != nil {
		return nil, convertErr(err, "setting quantity for product %d in cart of user %d", productID, userID)
	}
	return item, nil
}

// DeleteItem удаляет позицию. Возвращает domain.ErrRecordNotFound если позиции нет.
func (c *CartRepository) DeleteItem(ctx context.Context, userID, productID int64) error {
	tag, err := c.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return convertErr(err, "deleting product %d from cart of user %d", productID, userID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(domain.ErrRecordNotFound, "deleting product %d from cart of user %d", productID, userID)
	}
	return nil
}

// DeleteAll очищает корзину целиком. Пустая корзина не ошибка.
func (c *CartRepository) DeleteAll(ctx context.Context, userID int64) error {
	if _, err := c.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return convertErr(err, "clearing cart of user %d", userID)
	}
	return nil
}

// GetProducts возвращает позиции корзины, обогащенные данными каталога. Позиции
// с удаленными товарами отсеиваются самим join'ом.
func (c *CartRepository) GetProducts(ctx context.Context, userID int64) ([]repoargs.CartProduct, error) {
	rows, err := c.db.Query(ctx, `
		SELECT p.id, p.name, p.description, p.price_cents, p.image, p.category, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting cart products for user %d", userID)
	}
	defer rows.Close()

	var products []repoargs.CartProduct
	for rows.Next() {
		var cp repoargs.CartProduct
		scanErr := rows.Scan(&cp.ProductID, &cp.Name, &cp.Description, &cp.PriceCents, &cp.Image, &cp.Category, &cp.Quantity)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning cart product row")
		}
		products = append(products, cp)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "iterating cart product rows")
	}
	return products, nil
}

func scanCartItem(row rowScanner) (*domain.CartItem, error) {
	var item domain.CartItem
	err := row.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt, &item.UserID, &item.ProductID, &item.Quantity)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &item, nil
}
