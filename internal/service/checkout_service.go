package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/internal/transport/payment"
	"github.com/fsdevblog/groph-store/pkg/uow"
	"github.com/pkg/errors"
)

// rewardThresholdCents порог (в минорных единицах), начиная с которого чекаут
// награждается купоном на следующую покупку.
const rewardThresholdCents = 20000

const (
	successURLPath = "/purchase-success?session_id={CHECKOUT_SESSION_ID}"
	cancelURLPath  = "/purchase-cancel"
)

// metadataProduct снимок строки заказа, зашиваемый в metadata платежной сессии.
// Реконсиляция восстанавливает заказ именно из этого снимка, а не из живой корзины.
type metadataProduct struct {
	ID       int64 `json:"id"`
	Quantity int32 `json:"quantity"`
	Price    int64 `json:"price"`
}

// LineItem строка чекаута. Цена приходит от клиента и серверной перепроверки по
// каталогу не проходит - известная слабость, сохраненная из исходной семантики.
// Название и картинка товара, напротив, берутся из каталога по id.
type LineItem struct {
	ProductID  int64
	PriceCents int64
	Quantity   int32
}

type CheckoutSession struct {
	SessionID  string
	URL        string
	TotalCents int64
}

type ReconcileResult struct {
	OrderID          int64
	TrackingCode     string
	AlreadyProcessed bool
}

// CheckoutService оркестратор чекаута: подсчет суммы, применение купона, создание
// платежной сессии и последующая идемпотентная реконсиляция заказа.
type CheckoutService struct {
	uow         uow.UOW
	couponRepo  CouponRepository
	orderRepo   OrderRepository
	productRepo ProductRepository
	coupons     CouponOps
	payment     PaymentClient
	clientURL   string
}

func NewCheckoutService(u uow.UOW, coupons CouponOps, paymentClient PaymentClient, clientURL string) (*CheckoutService, error) {
	couponRepo, couponRepoErr := uow.GetRepositoryAs[CouponRepository](u, uow.RepositoryName(repoargs.CouponRepoName))
	if couponRepoErr != nil {
		return nil, couponRepoErr
	}
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	productRepo, productRepoErr := uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if productRepoErr != nil {
		return nil, productRepoErr
	}
	return &CheckoutService{
		uow:         u,
		couponRepo:  couponRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		coupons:     coupons,
		payment:     paymentClient,
		clientURL:   clientURL,
	}, nil
}

// CreateSession создает платежную сессию у процессора.
//
// Алгоритм:
//  1. Пустой список строк - domain.ErrEmptyCart.
//  2. Сумма считается в минорных единицах: Σ цена*количество.
//  3. Купон (если передан и найден активным у юзера) уменьшает сумму на
//     round(total*pct/100). Здесь купон НЕ гасится - гашение происходит только
//     после подтвержденной оплаты, брошенный чекаут оставляет купон рабочим.
//  4. В metadata сессии зашивается снимок строк с ценами - единственный источник
//     для последующего восстановления заказа.
//  5. Если сумма после скидки достигла порога, юзеру выдается наградной купон.
//     Выдача происходит до подтверждения оплаты (семантика оригинала).
func (s *CheckoutService) CreateSession(
	ctx context.Context,
	userID int64,
	items []LineItem,
	couponCode string,
) (*CheckoutSession, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("creating checkout session: %w", domain.ErrEmptyCart)
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	catalog, catalogErr := s.productRepo.FindByIDs(ctx, ids)
	if catalogErr != nil {
		return nil, errors.Wrap(catalogErr, "creating checkout session")
	}
	products := make(map[int64]domain.Product, len(catalog))
	for _, p := range catalog {
		products[p.ID] = p
	}

	var totalCents int64
	sessionItems := make([]payment.SessionLineItem, len(items))
	snapshot := make([]metadataProduct, len(items))
	for i, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("creating checkout session: product %d: %w", item.ProductID, domain.ErrRecordNotFound)
		}
		totalCents += item.PriceCents * int64(item.Quantity)
		sessionItems[i] = payment.SessionLineItem{
			Name:       product.Name,
			Image:      product.Image,
			UnitAmount: item.PriceCents,
			Quantity:   item.Quantity,
		}
		snapshot[i] = metadataProduct{
			ID:       item.ProductID,
			Quantity: item.Quantity,
			Price:    item.PriceCents,
		}
	}

	var percentOff int32
	if couponCode != "" {
		coupon, couponErr := s.couponRepo.FindActiveByUserAndCode(ctx, userID, couponCode)
		switch {
		case couponErr == nil:
			percentOff = coupon.DiscountPercentage
			totalCents -= roundPercent(totalCents, coupon.DiscountPercentage)
		case errors.Is(couponErr, domain.ErrRecordNotFound):
			// ненайденный купон не ошибка чекаута - сессия создается без скидки.
		default:
			return nil, errors.Wrap(couponErr, "creating checkout session")
		}
	}

	snapshotJSON, marshalErr := json.Marshal(snapshot)
	if marshalErr != nil {
		return nil, errors.Wrap(marshalErr, "creating checkout session")
	}

	session, sessionErr := s.payment.CreateCheckoutSession(ctx, payment.SessionParams{
		LineItems:  sessionItems,
		Mode:       payment.ModePayment,
		SuccessURL: s.clientURL + successURLPath,
		CancelURL:  s.clientURL + cancelURLPath,
		PercentOff: percentOff,
		Metadata: map[string]string{
			"userId":     strconv.FormatInt(userID, 10),
			"couponCode": couponCode,
			"products":   string(snapshotJSON),
		},
	})
	if sessionErr != nil {
		return nil, errors.Wrap(sessionErr, "creating checkout session")
	}

	if totalCents >= rewardThresholdCents {
		if _, rewardErr := s.coupons.IssueReward(ctx, userID); rewardErr != nil {
			return nil, errors.Wrap(rewardErr, "creating checkout session")
		}
	}

	return &CheckoutSession{
		SessionID:  session.ID,
		URL:        session.URL,
		TotalCents: totalCents,
	}, nil
}

// Reconcile подтверждает оплату и материализует заказ по идентификатору платежной
// сессии.
//
// Алгоритм:
//  1. Запрашивает у процессора авторитетное состояние сессии.
//  2. Если заказ по этой сессии уже существует - возвращает его трекинг код, не
//     создавая ничего (идемпотентный успех, а не ошибка).
//  3. При подтвержденной оплате гасит потраченный купон из metadata.
//  4. Восстанавливает строки заказа строго из metadata снимка; битые metadata -
//     domain.ErrInvalidMetadata, заказ не создается.
//  5. Создает заказ (сумма - подтвержденная процессором) и чистит корзину
//     покупателя одной транзакцией.
//
// Конкурентная реконсиляция той же сессии упирается в уникальный индекс
// session_id: проигравший получает domain.ErrDuplicateKey и возвращает уже
// созданный заказ.
func (s *CheckoutService) Reconcile(ctx context.Context, sessionID string) (*ReconcileResult, error) {
	session, sessionErr := s.payment.RetrieveCheckoutSession(ctx, sessionID)
	if sessionErr != nil {
		return nil, errors.Wrap(sessionErr, "reconciling order")
	}

	if existing, findErr := s.orderRepo.FindBySessionID(ctx, sessionID); findErr == nil {
		return &ReconcileResult{
			OrderID:          existing.ID,
			TrackingCode:     existing.TrackingCode,
			AlreadyProcessed: true,
		}, nil
	} else if !errors.Is(findErr, domain.ErrRecordNotFound) {
		return nil, errors.Wrap(findErr, "reconciling order")
	}

	userID, userIDErr := strconv.ParseInt(session.Metadata["userId"], 10, 64)
	if userIDErr != nil {
		return nil, fmt.Errorf("reconciling order for session %s: %w", sessionID, domain.ErrInvalidMetadata)
	}

	if couponCode := session.Metadata["couponCode"]; couponCode != "" && session.PaymentStatus == payment.StatusPaid {
		deactivateErr := s.coupons.Deactivate(ctx, userID, couponCode)
		// отсутствие купона не мешает реконсиляции - он мог быть погашен ранее.
		if deactivateErr != nil && !errors.Is(deactivateErr, domain.ErrRecordNotFound) {
			return nil, errors.Wrap(deactivateErr, "reconciling order")
		}
	}

	var snapshot []metadataProduct
	if productsJSON := session.Metadata["products"]; productsJSON != "" {
		if unmarshalErr := json.Unmarshal([]byte(productsJSON), &snapshot); unmarshalErr != nil {
			return nil, fmt.Errorf("reconciling order for session %s: %w", sessionID, domain.ErrInvalidMetadata)
		}
	}

	orderItems := make([]repoargs.CreateOrderItem, len(snapshot))
	for i, p := range snapshot {
		orderItems[i] = repoargs.CreateOrderItem{
			ProductID:  p.ID,
			Quantity:   p.Quantity,
			PriceCents: p.Price,
		}
	}

	var order *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}
		cartRepo, cartRepoErr := uow.GetAs[CartRepository](tx, uow.RepositoryName(repoargs.CartRepoName))
		if cartRepoErr != nil {
			return cartRepoErr //nolint:wrapcheck
		}

		var createErr error
		order, createErr = orderRepo.Create(c, repoargs.CreateOrder{
			UserID:       userID,
			SessionID:    sessionID,
			TrackingCode: generateTrackingCode(),
			// авторитетная сумма - подтвержденная процессором, а не заявленная
			// клиентом или metadata.
			TotalCents: session.AmountTotal,
			Status:     domain.OrderStatusPending,
			Items:      orderItems,
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		return cartRepo.DeleteAll(c, userID) //nolint:wrapcheck
	})

	if txErr != nil {
		// Проигрыш гонки за уникальный session_id: заказ уже создан конкурентным
		// запросом, возвращаем его.
		if errors.Is(txErr, domain.ErrDuplicateKey) {
			existing, existingErr := s.orderRepo.FindBySessionID(ctx, sessionID)
			if existingErr != nil {
				return nil, errors.Wrap(existingErr, "reconciling order")
			}
			return &ReconcileResult{
				OrderID:          existing.ID,
				TrackingCode:     existing.TrackingCode,
				AlreadyProcessed: true,
			}, nil
		}
		return nil, errors.Wrap(txErr, "reconciling order")
	}

	return &ReconcileResult{
		OrderID:      order.ID,
		TrackingCode: order.TrackingCode,
	}, nil
}

// roundPercent возвращает round(total*pct/100) в целочисленной арифметике.
func roundPercent(total int64, pct int32) int64 {
	return (total*int64(pct) + 50) / 100
}

func generateTrackingCode() string {
	return fmt.Sprintf("ORD-%d-%03d", time.Now().UnixMilli(), rand.Intn(1000)) //nolint:gosec
}
