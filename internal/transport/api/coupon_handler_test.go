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
	"github.com/fsdevblog/groph-store/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-store/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type CouponHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockCouponService *mocks.MockCouponServicer
	jwtAccessSecret   []byte
	userID            int64
}

func TestCouponHandlerSuite(t *testing.T) {
	suite.Run(t, new(CouponHandlerTestSuite))
}

func (s *CouponHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())

	s.mockCouponService = mocks.NewMockCouponServicer(mockCtrl)
	s.jwtAccessSecret = []byte("super secret key")
	s.userID = 7

	s.router = New(RouterArgs{
		Logger:          logger.New(os.Stdout),
		CouponService:   s.mockCouponService,
		JWTAccessSecret: s.jwtAccessSecret,
	})
}

func (s *CouponHandlerTestSuite) authCookies() func(*testutils.RequestOptions) {
	return testutils.WithCookies([]*http.Cookie{
		authCookieFor(s.T(), s.userID, domain.RoleCustomer, s.jwtAccessSecret),
	})
}

func (s *CouponHandlerTestSuite) TestShow() {
	expiresAt := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	s.mockCouponService.EXPECT().
		FetchActive(gomock.Any(), s.userID).
		Return(&domain.Coupon{
			Code:               "GIFT1A2B3C",
			DiscountPercentage: 10,
			ExpiresAt:          expiresAt,
			IsActive:           true,
			UserID:             s.userID,
		}, nil)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + CouponRoute,
	}, s.authCookies())
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusOK, res.StatusCode)

	var body struct {
		Coupon *CouponResponse `json:"coupon"`
	}
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Require().NotNil(body.Coupon)
	s.Equal("GIFT1A2B3C", body.Coupon.Code)
	s.EqualValues(10, body.Coupon.DiscountPercentage)
}

func (s *CouponHandlerTestSuite) TestShow_NoCoupon() {
	s.mockCouponService.EXPECT().
		FetchActive(gomock.Any(), s.userID).
		Return(nil, nil)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + CouponRoute,
	}, s.authCookies())
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusOK, res.StatusCode)

	var body struct {
		Coupon *CouponResponse `json:"coupon"`
	}
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Nil(body.Coupon)
}

func (s *CouponHandlerTestSuite) TestValidate() {
	s.mockCouponService.EXPECT().
		Validate(gomock.Any(), s.userID, "GIFT1A2B3C").
		Return(&domain.Coupon{Code: "GIFT1A2B3C", DiscountPercentage: 10}, nil)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + CouponValidateRoute,
		Body:   bytes.NewReader([]byte(`{"code":"GIFT1A2B3C"}`)),
	}, s.authCookies(), testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusOK, res.StatusCode)

	var body struct {
		Message            string `json:"message"`
		Code               string `json:"code"`
		DiscountPercentage int32  `json:"discountPercentage"`
	}
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Equal("coupon is valid", body.Message)
	s.Equal("GIFT1A2B3C", body.Code)
	s.EqualValues(10, body.DiscountPercentage)
}

func (s *CouponHandlerTestSuite) TestValidate_Errors() {
	cases := []struct {
		name       string
		serviceErr error
	}{
		{name: "unknown code", serviceErr: domain.ErrRecordNotFound},
		{name: "expired coupon", serviceErr: domain.ErrCouponExpired},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			s.mockCouponService.EXPECT().
				Validate(gomock.Any(), s.userID, "GIFT1A2B3C").
				Return(nil, t.serviceErr)

			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + CouponValidateRoute,
				Body:   bytes.NewReader([]byte(`{"code":"GIFT1A2B3C"}`)),
			}, s.authCookies(), testutils.WithHeader("Content-Type", "application/json"))
			s.Require().NoError(err)
			defer func() { s.Require().NoError(res.Body.Close()) }()

			s.Equal(http.StatusNotFound, res.StatusCode)
		})
	}
}

func (s *CouponHandlerTestSuite) TestValidate_MissingCode() {
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + CouponValidateRoute,
		Body:   bytes.NewReader([]byte(`{}`)),
	}, s.authCookies(), testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	defer func() { s.Require().NoError(res.Body.Close()) }()

	s.Equal(http.StatusBadRequest, res.StatusCode)
}
