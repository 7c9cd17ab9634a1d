package domain

import "time"

type User struct {
	ID                int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Name              string
	Email             string
	EncryptedPassword string
	Role              RoleType
}

type Product struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string
	Description string
	PriceCents  int64
	Image       string
	Category    string
	IsFeatured  bool
}

// CartItem позиция корзины. Уникальна в рамках пары (UserID, ProductID),
// Quantity всегда строго больше нуля - позиция с нулевым количеством удаляется.
type CartItem struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    int64
	ProductID int64
	Quantity  int32
}

// Coupon скидочный купон. У юзера может быть максимум один купон (активный или нет).
type Coupon struct {
	ID                 int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Code               string
	DiscountPercentage int32
	ExpiresAt          time.Time
	IsActive           bool
	UserID             int64
}

// Order неизменяемая запись завершенной покупки. SessionID уникален - это и есть
// гарантия "один заказ на одну платежную сессию". Меняется только Status.
type Order struct {
	ID           int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       int64
	TotalCents   int64
	SessionID    string
	TrackingCode string
	Status       OrderStatusType
	Items        []OrderItem
}

type OrderItem struct {
	ID         int64
	OrderID    int64
	ProductID  int64
	Quantity   int32
	PriceCents int64
}
