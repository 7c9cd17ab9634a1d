package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"testing"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/internal/service/mocks"
	"github.com/fsdevblog/groph-store/internal/transport/payment"
	"github.com/fsdevblog/groph-store/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-store/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

const testClientURL = "http://localhost:5173"

type CheckoutServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockTX          *uowmocks.MockTX
	mockCouponRepo  *mocks.MockCouponRepository
	mockOrderRepo   *mocks.MockOrderRepository
	mockProductRepo *mocks.MockProductRepository
	mockCartRepo    *mocks.MockCartRepository
	mockCoupons     *mocks.MockCouponOps
	mockPayment     *mocks.MockPaymentClient
	service         *CheckoutService
}

func TestCheckoutServiceSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceTestSuite))
}

func (s *CheckoutServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockCouponRepo = mocks.NewMockCouponRepository(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockProductRepo = mocks.NewMockProductRepository(s.mockCtrl)
	s.mockCartRepo = mocks.NewMockCartRepository(s.mockCtrl)
	s.mockCoupons = mocks.NewMockCouponOps(s.mockCtrl)
	s.mockPayment = mocks.NewMockPaymentClient(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.CouponRepoName)).
		Return(s.mockCouponRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.ProductRepoName)).
		Return(s.mockProductRepo, nil).AnyTimes()

	var err error
	s.service, err = NewCheckoutService(s.mockUOW, s.mockCoupons, s.mockPayment, testClientURL)
	s.Require().NoError(err)
}

func (s *CheckoutServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CheckoutServiceTestSuite) expectCatalog(products ...domain.Product) {
	s.mockProductRepo.EXPECT().
		FindByIDs(gomock.Any(), gomock.Any()).
		Return(products, nil)
}

func (s *CheckoutServiceTestSuite) TestCreateSession() {
	var userID int64 = 7
	// 3 x 10.00 + 1 x 15.00 = 45.00
	items := []LineItem{
		{ProductID: 1, PriceCents: 1000, Quantity: 3},
		{ProductID: 2, PriceCents: 1500, Quantity: 1},
	}
	s.expectCatalog(
		domain.Product{ID: 1, Name: "mug", Image: "mug.jpg"},
		domain.Product{ID: 2, Name: "tshirt", Image: "tshirt.jpg"},
	)

	s.mockPayment.EXPECT().
		CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params payment.SessionParams) (*payment.Session, error) {
			s.Equal(payment.ModePayment, params.Mode)
			s.Equal(testClientURL+"/purchase-success?session_id={CHECKOUT_SESSION_ID}", params.SuccessURL)
			s.Equal(testClientURL+"/purchase-cancel", params.CancelURL)
			s.EqualValues(0, params.PercentOff)

			s.Require().Len(params.LineItems, 2)
			s.Equal("mug", params.LineItems[0].Name)
			s.EqualValues(1000, params.LineItems[0].UnitAmount)
			s.EqualValues(3, params.LineItems[0].Quantity)

			s.Equal("7", params.Metadata["userId"])
			s.Empty(params.Metadata["couponCode"])

			var snapshot []map[string]int64
			s.Require().NoError(json.Unmarshal([]byte(params.Metadata["products"]), &snapshot))
			s.Require().Len(snapshot, 2)
			s.EqualValues(1, snapshot[0]["id"])
			s.EqualValues(3, snapshot[0]["quantity"])
			s.EqualValues(1000, snapshot[0]["price"])

			return &payment.Session{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
		})

	session, err := s.service.CreateSession(context.Background(), userID, items, "")
	s.Require().NoError(err)
	s.Equal("cs_test_1", session.SessionID)
	s.EqualValues(4500, session.TotalCents)
}

// Скидка 10% на 45.00: итог 40.50, процент прокидывается процессору, купон при
// создании сессии не гасится.
func (s *CheckoutServiceTestSuite) TestCreateSession_WithCoupon() {
	var userID int64 = 7
	items := []LineItem{
		{ProductID: 1, PriceCents: 1000, Quantity: 3},
		{ProductID: 2, PriceCents: 1500, Quantity: 1},
	}
	s.expectCatalog(
		domain.Product{ID: 1, Name: "mug"},
		domain.Product{ID: 2, Name: "tshirt"},
	)

	s.mockCouponRepo.EXPECT().
		FindActiveByUserAndCode(gomock.Any(), userID, "SAVE10").
		Return(&domain.Coupon{Code: "SAVE10", DiscountPercentage: 10, IsActive: true, UserID: userID}, nil)

	s.mockPayment.EXPECT().
		CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params payment.SessionParams) (*payment.Session, error) {
			s.EqualValues(10, params.PercentOff)
			s.Equal("SAVE10", params.Metadata["couponCode"])
			return &payment.Session{ID: "cs_test_2"}, nil
		})

	session, err := s.service.CreateSession(context.Background(), userID, items, "SAVE10")
	s.Require().NoError(err)
	s.EqualValues(4050, session.TotalCents)
}

// Несуществующий купон игнорируется, сессия создается без скидки.
func (s *CheckoutServiceTestSuite) TestCreateSession_CouponNotFound() {
	var userID int64 = 7
	items := []LineItem{{ProductID: 1, PriceCents: 1000, Quantity: 1}}
	s.expectCatalog(domain.Product{ID: 1, Name: "mug"})

	s.mockCouponRepo.EXPECT().
		FindActiveByUserAndCode(gomock.Any(), userID, "NOPE").
		Return(nil, domain.ErrRecordNotFound)

	s.mockPayment.EXPECT().
		CreateCheckoutSession(gomock.Any(), gomock.Any()).
		Return(&payment.Session{ID: "cs_test_3"}, nil)

	session, err := s.service.CreateSession(context.Background(), userID, items, "NOPE")
	s.Require().NoError(err)
	s.EqualValues(1000, session.TotalCents)
}

// Достижение порога по сумме выдает наградной купон еще до оплаты.
func (s *CheckoutServiceTestSuite) TestCreateSession_RewardThreshold() {
	var userID int64 = 7
	items := []LineItem{{ProductID: 1, PriceCents: rewardThresholdCents, Quantity: 1}}
	s.expectCatalog(domain.Product{ID: 1, Name: "console"})

	s.mockPayment.EXPECT().
		CreateCheckoutSession(gomock.Any(), gomock.Any()).
		Return(&payment.Session{ID: "cs_test_4"}, nil)

	s.mockCoupons.EXPECT().
		IssueReward(gomock.Any(), userID).
		Return(&domain.Coupon{Code: "GIFTAAAAAA"}, nil)

	_, err := s.service.CreateSession(context.Background(), userID, items, "")
	s.Require().NoError(err)
}

func (s *CheckoutServiceTestSuite) TestCreateSession_EmptyItems() {
	_, err := s.service.CreateSession(context.Background(), 7, nil, "")
	s.Require().ErrorIs(err, domain.ErrEmptyCart)
}

func (s *CheckoutServiceTestSuite) TestCreateSession_UnknownProduct() {
	items := []LineItem{{ProductID: 99, PriceCents: 1000, Quantity: 1}}
	s.expectCatalog() // каталог пустой

	_, err := s.service.CreateSession(context.Background(), 7, items, "")
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

var trackingCodeRe = regexp.MustCompile(`^ORD-\d+-\d{3}$`)

func (s *CheckoutServiceTestSuite) paidSession(sessionID string) *payment.Session {
	return &payment.Session{
		ID:            sessionID,
		PaymentStatus: payment.StatusPaid,
		AmountTotal:   4050,
		Metadata: map[string]string{
			"userId":     "7",
			"couponCode": "SAVE10",
			"products":   `[{"id":1,"quantity":3,"price":1000},{"id":2,"quantity":1,"price":1500}]`,
		},
	}
}

func (s *CheckoutServiceTestSuite) TestReconcile() {
	sessionID := "cs_test_10"

	s.mockPayment.EXPECT().
		RetrieveCheckoutSession(gomock.Any(), sessionID).
		Return(s.paidSession(sessionID), nil)

	s.mockOrderRepo.EXPECT().
		FindBySessionID(gomock.Any(), sessionID).
		Return(nil, domain.ErrRecordNotFound)

	// оплаченная сессия с купоном гасит купон
	s.mockCoupons.EXPECT().
		Deactivate(gomock.Any(), int64(7), "SAVE10").
		Return(nil)

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.CartRepoName)).
		Return(s.mockCartRepo, nil)

	s.mockOrderRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
			s.EqualValues(7, args.UserID)
			s.Equal(sessionID, args.SessionID)
			// сумма берется у процессора, а не из metadata
			s.EqualValues(4050, args.TotalCents)
			s.Equal(domain.OrderStatusPending, args.Status)
			s.Regexp(trackingCodeRe, args.TrackingCode)

			s.Require().Len(args.Items, 2)
			s.EqualValues(1, args.Items[0].ProductID)
			s.EqualValues(3, args.Items[0].Quantity)
			s.EqualValues(1000, args.Items[0].PriceCents)

			return &domain.Order{
				ID:           55,
				UserID:       args.UserID,
				SessionID:    args.SessionID,
				TrackingCode: args.TrackingCode,
				TotalCents:   args.TotalCents,
				Status:       args.Status,
			}, nil
		})

	// корзина чистится той же транзакцией
	s.mockCartRepo.EXPECT().
		DeleteAll(gomock.Any(), int64(7)).
		Return(nil)

	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(context.Background(), s.mockTX)
		},
	)

	result, err := s.service.Reconcile(context.Background(), sessionID)
	s.Require().NoError(err)
	s.False(result.AlreadyProcessed)
	s.EqualValues(55, result.OrderID)
	s.Regexp(trackingCodeRe, result.TrackingCode)
}

// Потраченный купон мог быть уже удален к моменту реконсиляции (наградной купон
// затирает его при создании сессии). Репозиторная "запись не найдена" от гашения
// не прерывает реконсиляцию - заказ создается, корзина чистится.
func (s *CheckoutServiceTestSuite) TestReconcile_CouponAlreadyGone() {
	sessionID := "cs_test_10"

	s.mockPayment.EXPECT().
		RetrieveCheckoutSession(gomock.Any(), sessionID).
		Return(s.paidSession(sessionID), nil)

	s.mockOrderRepo.EXPECT().
		FindBySessionID(gomock.Any(), sessionID).
		Return(nil, domain.ErrRecordNotFound)

	s.mockCoupons.EXPECT().
		Deactivate(gomock.Any(), int64(7), "SAVE10").
		Return(fmt.Errorf("[repository/deactivating coupon SAVE10 for user 7] %w", domain.ErrRecordNotFound))

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.CartRepoName)).
		Return(s.mockCartRepo, nil)

	s.mockOrderRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&domain.Order{ID: 55, SessionID: sessionID, TrackingCode: "ORD-1700000000000-042"}, nil)
	s.mockCartRepo.EXPECT().
		DeleteAll(gomock.Any(), int64(7)).
		Return(nil)

	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(context.Background(), s.mockTX)
		},
	)

	result, err := s.service.Reconcile(context.Background(), sessionID)
	s.Require().NoError(err)
	s.False(result.AlreadyProcessed)
	s.EqualValues(55, result.OrderID)
}

// Повторный вызов с тем же sessionId возвращает уже созданный заказ, ничего не
// создавая и не трогая купоны с корзиной.
func (s *CheckoutServiceTestSuite) TestReconcile_AlreadyProcessed() {
	sessionID := "cs_test_10"
	existing := domain.Order{ID: 55, SessionID: sessionID, TrackingCode: "ORD-1700000000000-042"}

	s.mockPayment.EXPECT().
		RetrieveCheckoutSession(gomock.Any(), sessionID).
		Return(s.paidSession(sessionID), nil)

	s.mockOrderRepo.EXPECT().
		FindBySessionID(gomock.Any(), sessionID).
		Return(&existing, nil)

	result, err := s.service.Reconcile(context.Background(), sessionID)
	s.Require().NoError(err)
	s.True(result.AlreadyProcessed)
	s.Equal(existing.TrackingCode, result.TrackingCode)
}

// Проигрыш гонки двух конкурентных реконсиляций: вставка упирается в уникальный
// session_id, возвращается заказ победителя.
func (s *CheckoutServiceTestSuite) TestReconcile_DuplicateRace() {
	sessionID := "cs_test_10"
	existing := domain.Order{ID: 55, SessionID: sessionID, TrackingCode: "ORD-1700000000000-042"}

	s.mockPayment.EXPECT().
		RetrieveCheckoutSession(gomock.Any(), sessionID).
		Return(s.paidSession(sessionID), nil)

	gomock.InOrder(
		s.mockOrderRepo.EXPECT().
			FindBySessionID(gomock.Any(), sessionID).
			Return(nil, domain.ErrRecordNotFound),
		s.mockOrderRepo.EXPECT().
			FindBySessionID(gomock.Any(), sessionID).
			Return(&existing, nil),
	)

	s.mockCoupons.EXPECT().
		Deactivate(gomock.Any(), int64(7), "SAVE10").
		Return(nil)

	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).Return(domain.ErrDuplicateKey)

	result, err := s.service.Reconcile(context.Background(), sessionID)
	s.Require().NoError(err)
	s.True(result.AlreadyProcessed)
	s.Equal(existing.TrackingCode, result.TrackingCode)
}

// Неоплаченная сессия не гасит купон, но заказ создается (сверка статуса остается
// за процессором).
func (s *CheckoutServiceTestSuite) TestReconcile_UnpaidKeepsCoupon() {
	sessionID := "cs_test_11"
	session := s.paidSession(sessionID)
	session.PaymentStatus = "unpaid"

	s.mockPayment.EXPECT().
		RetrieveCheckoutSession(gomock.Any(), sessionID).
		Return(session, nil)

	s.mockOrderRepo.EXPECT().
		FindBySessionID(gomock.Any(), sessionID).
		Return(nil, domain.ErrRecordNotFound)

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.CartRepoName)).
		Return(s.mockCartRepo, nil)
	s.mockOrderRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&domain.Order{ID: 56, TrackingCode: "ORD-1700000000001-001"}, nil)
	s.mockCartRepo.EXPECT().
		DeleteAll(gomock.Any(), int64(7)).
		Return(nil)

	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(context.Background(), s.mockTX)
		},
	)

	result, err := s.service.Reconcile(context.Background(), sessionID)
	s.Require().NoError(err)
	s.False(result.AlreadyProcessed)
}

func (s *CheckoutServiceTestSuite) TestReconcile_InvalidMetadata() {
	cases := []struct {
		name     string
		metadata map[string]string
	}{
		{
			name:     "broken user id",
			metadata: map[string]string{"userId": "abc", "products": "[]"},
		}, {
			name:     "missing user id",
			metadata: map[string]string{"products": "[]"},
		}, {
			name:     "broken products json",
			metadata: map[string]string{"userId": "7", "products": "{not json"},
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			sessionID := "cs_test_12"
			s.mockPayment.EXPECT().
				RetrieveCheckoutSession(gomock.Any(), sessionID).
				Return(&payment.Session{
					ID:            sessionID,
					PaymentStatus: payment.StatusPaid,
					Metadata:      t.metadata,
				}, nil)
			s.mockOrderRepo.EXPECT().
				FindBySessionID(gomock.Any(), sessionID).
				Return(nil, domain.ErrRecordNotFound)

			_, err := s.service.Reconcile(context.Background(), sessionID)
			s.Require().ErrorIs(err, domain.ErrInvalidMetadata)
		})
	}
}
