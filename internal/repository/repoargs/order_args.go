package repoargs

import "github.com/fsdevblog/groph-store/internal/domain"

type CreateOrder struct {
	UserID       int64
	SessionID    string
	TrackingCode string
	TotalCents   int64
	Status       domain.OrderStatusType
	Items        []CreateOrderItem
}

type CreateOrderItem struct {
	ProductID  int64
	Quantity   int32
	PriceCents int64
}

// OrderItemView строка заказа с данными товара для выдачи наружу.
type OrderItemView struct {
	ProductID  int64
	Name       string
	Image      string
	Quantity   int32
	PriceCents int64
}

type OrderView struct {
	Order domain.Order
	Items []OrderItemView
}

// AdminOrderView то же что OrderView, плюс данные владельца - для админской выдачи.
type AdminOrderView struct {
	Order     domain.Order
	Items     []OrderItemView
	UserName  string
	UserEmail string
}
