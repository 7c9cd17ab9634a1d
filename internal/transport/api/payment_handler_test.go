package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/logger"
	"github.com/fsdevblog/groph-store/internal/service"
	"github.com/fsdevblog/groph-store/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-store/internal/transport/api/testutils"
	"github.com/fsdevblog/groph-store/internal/transport/payment"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type PaymentHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockCheckoutService *mocks.MockCheckoutServicer
	jwtAccessSecret     []byte
	userID              int64
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

func (s *PaymentHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())

	s.mockCheckoutService = mocks.NewMockCheckoutServicer(mockCtrl)
	s.jwtAccessSecret = []byte("super secret key")
	s.userID = 7

	s.router = New(RouterArgs{
		Logger:          logger.New(os.Stdout),
		CheckoutService: s.mockCheckoutService,
		JWTAccessSecret: s.jwtAccessSecret,
	})
}

func (s *PaymentHandlerTestSuite) authCookies() func(*testutils.RequestOptions) {
	return testutils.WithCookies([]*http.Cookie{
		authCookieFor(s.T(), s.userID, domain.RoleCustomer, s.jwtAccessSecret),
	})
}

func (s *PaymentHandlerTestSuite) TestCreateSession() {
	s.mockCheckoutService.EXPECT().
		CreateSession(gomock.Any(), s.userID, []service.LineItem{
			{ProductID: 10, PriceCents: 1050, Quantity: 2},
			{ProductID: 11, PriceCents: 2400, Quantity: 1},
		}, "SAVE10").
		Return(&service.CheckoutSession{
			SessionID:  "cs_test_1",
			URL:        "https://pay.example/cs_test_1",
			TotalCents: 4050,
		}, nil)

	payload := []byte(`{
		"products": [
			{"productId": 10, "quantity": 2, "price": 10.50},
			{"productId": 11, "quantity": 1, "price": 24.00}
		],
		"couponCode": "SAVE10"
	}`)
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + CheckoutSessionRoute,
		Body:   bytes.NewReader(payload),
	}, s.authCookies(), testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusOK, res.StatusCode)

	var body struct {
		ID          string  `json:"id"`
		URL         string  `json:"url"`
		TotalAmount float64 `json:"totalAmount"`
	}
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Equal("cs_test_1", body.ID)
	s.Equal("https://pay.example/cs_test_1", body.URL)
	s.InDelta(40.50, body.TotalAmount, 0.001)
}

func (s *PaymentHandlerTestSuite) TestCreateSession_EmptyProducts() {
	s.mockCheckoutService.EXPECT().
		CreateSession(gomock.Any(), s.userID, []service.LineItem{}, "").
		Return(nil, domain.ErrEmptyCart)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + CheckoutSessionRoute,
		Body:   bytes.NewReader([]byte(`{"products": []}`)),
	}, s.authCookies(), testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *PaymentHandlerTestSuite) TestCreateSession_UnknownProduct() {
	s.mockCheckoutService.EXPECT().
		CreateSession(gomock.Any(), s.userID, gomock.Any(), "").
		Return(nil, domain.ErrRecordNotFound)

	payload := []byte(`{"products": [{"productId": 99, "quantity": 1, "price": 10.00}]}`)
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + CheckoutSessionRoute,
		Body:   bytes.NewReader(payload),
	}, s.authCookies(), testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusNotFound, res.StatusCode)
}

// Ошибки самого процессора не маскируются под 500, клиент получает 502.
func (s *PaymentHandlerTestSuite) TestCreateSession_ProviderError() {
	s.mockCheckoutService.EXPECT().
		CreateSession(gomock.Any(), s.userID, gomock.Any(), "").
		Return(nil, &payment.StatusCodeError{Code: http.StatusServiceUnavailable})

	payload := []byte(`{"products": [{"productId": 10, "quantity": 1, "price": 10.00}]}`)
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + CheckoutSessionRoute,
		Body:   bytes.NewReader(payload),
	}, s.authCookies(), testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusBadGateway, res.StatusCode)
}

func (s *PaymentHandlerTestSuite) TestCreateSession_Unauthorized() {
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + CheckoutSessionRoute,
		Body:   bytes.NewReader([]byte(`{"products": []}`)),
	}, testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusUnauthorized, res.StatusCode)
}

func (s *PaymentHandlerTestSuite) TestCheckoutSuccess() {
	cases := []struct {
		name        string
		result      service.ReconcileResult
		wantMessage string
	}{
		{
			name:        "new order",
			result:      service.ReconcileResult{OrderID: 42, TrackingCode: "ORD-1-001"},
			wantMessage: "payment successful, order created",
		},
		{
			name:        "repeated call",
			result:      service.ReconcileResult{OrderID: 42, TrackingCode: "ORD-1-001", AlreadyProcessed: true},
			wantMessage: "order already processed",
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			s.mockCheckoutService.EXPECT().
				Reconcile(gomock.Any(), "cs_test_1").
				Return(&t.result, nil)

			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + CheckoutSuccessRoute,
				Body:   bytes.NewReader([]byte(`{"sessionId": "cs_test_1"}`)),
			}, s.authCookies(), testutils.WithHeader("Content-Type", "application/json"))
			s.Require().NoError(err)
			defer func() { s.Require().NoError(res.Body.Close()) }()

			s.Equal(http.StatusOK, res.StatusCode)

			var body struct {
				Success      bool   `json:"success"`
				Message      string `json:"message"`
				OrderID      int64  `json:"orderId"`
				TrackingCode string `json:"trackingCode"`
			}
			s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
			s.True(body.Success)
			s.Equal(t.wantMessage, body.Message)
			s.EqualValues(42, body.OrderID)
			s.Equal("ORD-1-001", body.TrackingCode)
		})
	}
}

func (s *PaymentHandlerTestSuite) TestCheckoutSuccess_InvalidMetadata() {
	s.mockCheckoutService.EXPECT().
		Reconcile(gomock.Any(), "cs_test_1").
		Return(nil, domain.ErrInvalidMetadata)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + CheckoutSuccessRoute,
		Body:   bytes.NewReader([]byte(`{"sessionId": "cs_test_1"}`)),
	}, s.authCookies(), testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *PaymentHandlerTestSuite) TestCheckoutSuccess_MissingSessionID() {
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + CheckoutSuccessRoute,
		Body:   bytes.NewReader([]byte(`{}`)),
	}, s.authCookies(), testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusBadRequest, res.StatusCode)
}
