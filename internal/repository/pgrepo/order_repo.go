package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/pkg/uow"
)

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = "id, created_at, updated_at, user_id, total_cents, session_id, tracking_code, status"

// Create создает заказ вместе со строками. При конфликте session_id (заказ по этой
// платежной сессии уже материализован конкурентным запросом) возвращает
// domain.ErrDuplicateKey - вызывающая сторона обязана трактовать это как
// "уже обработано", а не как ошибку.
func (o *OrderRepository) Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `
		INSERT INTO orders (user_id, total_cents, session_id, tracking_code, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderColumns,
		args.UserID, args.TotalCents, args.SessionID, args.TrackingCode, args.Status,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order for session %s", args.SessionID)
	}

	for _, item := range args.Items {
		itemRow := o.db.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4)
			RETURNING id, order_id, product_id, quantity, price_cents`,
			order.ID, item.ProductID, item.Quantity, item.PriceCents,
		)
		var oi domain.OrderItem
		if scanErr := itemRow.Scan(&oi.ID, &oi.OrderID, &oi.ProductID, &oi.Quantity, &oi.PriceCents); scanErr != nil {
			return nil, convertErr(scanErr, "creating order item for order %d", order.ID)
		}
		order.Items = append(order.Items, oi)
	}
	return order, nil
}

// FindBySessionID ищет заказ по идентификатору платежной сессии. Возвращает
// domain.ErrRecordNotFound если заказа нет - это штатный путь реконсиляции.
func (o *OrderRepository) FindBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE session_id = $1`, sessionID)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by session %s", sessionID)
	}
	return order, nil
}

// GetByUserID возвращает заказы юзера со строками, отсортированные по дате создания
// по убыванию.
func (o *OrderRepository) GetByUserID(ctx context.Context, userID int64) ([]repoargs.OrderView, error) {
	rows, err := o.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting orders of user %d", userID)
	}
	orders, ordersErr := collectOrders(rows)
	if ordersErr != nil {
		return nil, ordersErr
	}

	views := make([]repoargs.OrderView, len(orders))
	ids := make([]int64, len(orders))
	for i, order := range orders {
		views[i] = repoargs.OrderView{Order: order}
		ids[i] = order.ID
	}
	if itemsErr := o.attachItems(ctx, ids, func(orderID int64, item repoargs.OrderItemView) {
		for i := range views {
			if views[i].Order.ID == orderID {
				views[i].Items = append(views[i].Items, item)
				return
			}
		}
	}); itemsErr != nil {
		return nil, itemsErr
	}
	return views, nil
}

// GetAll возвращает все заказы с данными владельцев - админская выборка.
func (o *OrderRepository) GetAll(ctx context.Context) ([]repoargs.AdminOrderView, error) {
	rows, err := o.db.Query(ctx, `
		SELECT o.id, o.created_at, o.updated_at, o.user_id, o.total_cents, o.session_id, o.tracking_code, o.status,
		       u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC`,
	)
	if err != nil {
		return nil, convertErr(err, "getting all orders")
	}
	defer rows.Close()

	var views []repoargs.AdminOrderView
	var ids []int64
	for rows.Next() {
		var v repoargs.AdminOrderView
		scanErr := rows.Scan(
			&v.Order.ID, &v.Order.CreatedAt, &v.Order.UpdatedAt, &v.Order.UserID,
			&v.Order.TotalCents, &v.Order.SessionID, &v.Order.TrackingCode, &v.Order.Status,
			&v.UserName, &v.UserEmail,
		)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning admin order row")
		}
		views = append(views, v)
		ids = append(ids, v.Order.ID)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "iterating admin order rows")
	}

	if itemsErr := o.attachItems(ctx, ids, func(orderID int64, item repoargs.OrderItemView) {
		for i := range views {
			if views[i].Order.ID == orderID {
				views[i].Items = append(views[i].Items, item)
				return
			}
		}
	}); itemsErr != nil {
		return nil, itemsErr
	}
	return views, nil
}

// UpdateStatus переводит заказ в новый статус. Возвращает domain.ErrRecordNotFound
// если заказа нет.
func (o *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatusType) error {
	tag, err := o.db.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, orderID, status)
	if err != nil {
		return convertErr(err, "updating status of order %d", orderID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(domain.ErrRecordNotFound, "updating status of order %d", orderID)
	}
	return nil
}

// attachItems подтягивает строки заказов одним запросом (с данными товара через
// left join - товар мог быть удален после покупки, цена и количество при этом
// остаются из снимка заказа).
func (o *OrderRepository) attachItems(
	ctx context.Context,
	orderIDs []int64,
	appendFn func(orderID int64, item repoargs.OrderItemView),
) error {
	if len(orderIDs) == 0 {
		return nil
	}
	rows, err := o.db.Query(ctx, `
		SELECT oi.order_id, oi.product_id, coalesce(p.name, ''), coalesce(p.image, ''), oi.quantity, oi.price_cents
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id`,
		orderIDs,
	)
	if err != nil {
		return convertErr(err, "getting order items for orders %v", orderIDs)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var item repoargs.OrderItemView
		scanErr := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Image, &item.Quantity, &item.PriceCents)
		if scanErr != nil {
			return convertErr(scanErr, "scanning order item row")
		}
		appendFn(orderID, item)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return convertErr(rowsErr, "iterating order item rows")
	}
	return nil
}

func collectOrders(rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}) ([]domain.Order, error) {
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		err := rows.Scan(
			&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.UserID,
			&order.TotalCents, &order.SessionID, &order.TrackingCode, &order.Status,
		)
		if err != nil {
			return nil, convertErr(err, "scanning order row")
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, convertErr(err, "iterating order rows")
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.UserID,
		&order.TotalCents, &order.SessionID, &order.TrackingCode, &order.Status,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &order, nil
}
