package api

import (
	"github.com/fsdevblog/groph-store/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// getUserIDFromContext возвращает id текущего юзера, положенный в контекст
// мидлварью AuthRequired.
func getUserIDFromContext(c *gin.Context) int64 {
	v, _ := c.Get(middlewares.CurrentUserIDKey)
	id, _ := v.(int64)
	return id
}

// centsToAmount переводит минорные единицы в сумму для выдачи наружу.
// Внутри приложения деньги живут только в центах.
func centsToAmount(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64() //nolint:mnd
}

// amountToCents переводит сумму из запроса в минорные единицы с округлением
// до цента.
func amountToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.New(1, 2)).Round(0).IntPart() //nolint:mnd
}
