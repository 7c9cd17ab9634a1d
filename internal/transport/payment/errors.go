package payment

import "fmt"

// StatusCodeError возвращается когда процессор ответил неожиданным HTTP статусом.
// Наружу транслируется как ошибка внешнего сервиса.
type StatusCodeError struct {
	Code int
}

func NewStatusCodeError(code int) *StatusCodeError {
	return &StatusCodeError{Code: code}
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("unexpected payment processor status code %d", e.Code)
}
