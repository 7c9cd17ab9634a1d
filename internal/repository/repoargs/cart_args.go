package repoargs

// CartProduct позиция корзины, обогащенная данными товара. Количество берется
// из корзины, остальное - из каталога.
type CartProduct struct {
	ProductID   int64
	Name        string
	Description string
	PriceCents  int64
	Image       string
	Category    string
	Quantity    int32
}
