package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/logger"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-store/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type OrdersHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockOrderService *mocks.MockOrderServicer
	jwtAccessSecret  []byte
}

func TestOrdersHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrdersHandlerTestSuite))
}

func (s *OrdersHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())

	s.mockOrderService = mocks.NewMockOrderServicer(mockCtrl)
	s.jwtAccessSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:          logger.New(os.Stdout),
		OrderService:    s.mockOrderService,
		JWTAccessSecret: s.jwtAccessSecret,
	})
}

func (s *OrdersHandlerTestSuite) cookiesFor(userID int64, role domain.RoleType) func(*testutils.RequestOptions) {
	return testutils.WithCookies([]*http.Cookie{
		authCookieFor(s.T(), userID, role, s.jwtAccessSecret),
	})
}

func (s *OrdersHandlerTestSuite) TestIndex() {
	var userID int64 = 7
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.mockOrderService.EXPECT().
		GetByUserID(gomock.Any(), userID).
		Return([]repoargs.OrderView{
			{
				Order: domain.Order{
					ID:           42,
					CreatedAt:    createdAt,
					UserID:       userID,
					TotalCents:   4050,
					TrackingCode: "ORD-1-001",
					Status:       domain.OrderStatusPending,
				},
				Items: []repoargs.OrderItemView{
					{ProductID: 10, Name: "mug", Quantity: 2, PriceCents: 1050},
				},
			},
		}, nil)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + UserOrdersRoute,
	}, s.cookiesFor(userID, domain.RoleCustomer))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusOK, res.StatusCode)

	var body []OrderResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Require().Len(body, 1)
	s.EqualValues(42, body[0].ID)
	s.Equal("ORD-1-001", body[0].TrackingCode)
	s.InDelta(40.50, body[0].TotalAmount, 0.001)
	s.Require().Len(body[0].Items, 1)
	s.Equal("mug", body[0].Items[0].Name)
}

func (s *OrdersHandlerTestSuite) TestAdminIndex() {
	s.mockOrderService.EXPECT().
		GetAll(gomock.Any()).
		Return([]repoargs.AdminOrderView{
			{
				Order:     domain.Order{ID: 42, TotalCents: 4050, Status: domain.OrderStatusPending},
				UserName:  "John",
				UserEmail: "john@example.com",
			},
		}, nil)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + OrdersRoute,
	}, s.cookiesFor(1, domain.RoleAdmin))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusOK, res.StatusCode)

	var body []AdminOrderResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Require().Len(body, 1)
	s.Equal("John", body[0].UserName)
	s.Equal("john@example.com", body[0].UserEmail)
}

// Админские маршруты недоступны обычным юзерам, роль берется из access токена.
func (s *OrdersHandlerTestSuite) TestAdminIndex_Forbidden() {
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + OrdersRoute,
	}, s.cookiesFor(7, domain.RoleCustomer))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusForbidden, res.StatusCode)
}

func (s *OrdersHandlerTestSuite) TestUpdateStatus() {
	s.mockOrderService.EXPECT().
		UpdateStatus(gomock.Any(), int64(42), domain.OrderStatusShipped).
		Return(nil)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPut,
		URL:    RouteGroup + OrdersRoute,
		Body:   bytes.NewReader([]byte(`{"orderId":42,"status":"shipped"}`)),
	}, s.cookiesFor(1, domain.RoleAdmin), testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusOK, res.StatusCode)
}

func (s *OrdersHandlerTestSuite) TestUpdateStatus_InvalidStatus() {
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPut,
		URL:    RouteGroup + OrdersRoute,
		Body:   bytes.NewReader([]byte(`{"orderId":42,"status":"teleported"}`)),
	}, s.cookiesFor(1, domain.RoleAdmin), testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *OrdersHandlerTestSuite) TestUpdateStatus_UnknownOrder() {
	s.mockOrderService.EXPECT().
		UpdateStatus(gomock.Any(), int64(99), domain.OrderStatusCanceled).
		Return(domain.ErrRecordNotFound)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPut,
		URL:    RouteGroup + OrdersRoute,
		Body:   bytes.NewReader([]byte(`{"orderId":99,"status":"canceled"}`)),
	}, s.cookiesFor(1, domain.RoleAdmin), testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusNotFound, res.StatusCode)
}
