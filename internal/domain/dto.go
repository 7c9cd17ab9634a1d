package domain

type RoleType string

const (
	RoleCustomer RoleType = "customer"
	RoleAdmin    RoleType = "admin"
)

type OrderStatusType string

const (
	OrderStatusPending    OrderStatusType = "pending"
	OrderStatusProcessing OrderStatusType = "processing"
	OrderStatusShipped    OrderStatusType = "shipped"
	OrderStatusDelivered  OrderStatusType = "delivered"
	OrderStatusCanceled   OrderStatusType = "canceled"
)

// Valid проверяет что статус входит в список поддерживаемых.
func (s OrderStatusType) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}
