package repoargs

import "time"

type CreateCoupon struct {
	UserID             int64
	Code               string
	DiscountPercentage int32
	ExpiresAt          time.Time
}
