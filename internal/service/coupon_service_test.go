package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/internal/service/mocks"
	"github.com/fsdevblog/groph-store/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-store/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type CouponServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockUOW        *uowmocks.MockUOW
	mockTX         *uowmocks.MockTX
	mockCouponRepo *mocks.MockCouponRepository
	service        *CouponService
}

func TestCouponServiceSuite(t *testing.T) {
	suite.Run(t, new(CouponServiceTestSuite))
}

func (s *CouponServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockCouponRepo = mocks.NewMockCouponRepository(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.CouponRepoName)).
		Return(s.mockCouponRepo, nil).AnyTimes()

	var err error
	s.service, err = NewCouponService(s.mockUOW)
	s.Require().NoError(err)
}

func (s *CouponServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CouponServiceTestSuite) TestFetchActive() {
	var userID int64 = 1
	coupon := domain.Coupon{
		ID:                 10,
		Code:               "GIFT1A2B3C",
		DiscountPercentage: 10,
		ExpiresAt:          time.Now().Add(time.Hour),
		IsActive:           true,
		UserID:             userID,
	}

	s.mockCouponRepo.EXPECT().
		FindActiveByUserID(gomock.Any(), userID).
		Return(&coupon, nil)

	got, err := s.service.FetchActive(context.Background(), userID)
	s.Require().NoError(err)
	s.Equal(coupon.Code, got.Code)
}

// Отсутствие купона не ошибка: возвращается nil, nil.
func (s *CouponServiceTestSuite) TestFetchActive_NotFound() {
	var userID int64 = 2

	s.mockCouponRepo.EXPECT().
		FindActiveByUserID(gomock.Any(), userID).
		Return(nil, domain.ErrRecordNotFound)

	got, err := s.service.FetchActive(context.Background(), userID)
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *CouponServiceTestSuite) TestValidate() {
	var userID int64 = 1
	coupon := domain.Coupon{
		Code:               "SAVE10",
		DiscountPercentage: 10,
		ExpiresAt:          time.Now().Add(time.Hour),
		IsActive:           true,
		UserID:             userID,
	}

	s.mockCouponRepo.EXPECT().
		FindActiveByUserAndCode(gomock.Any(), userID, coupon.Code).
		Return(&coupon, nil)

	got, err := s.service.Validate(context.Background(), userID, coupon.Code)
	s.Require().NoError(err)
	s.Equal(coupon.DiscountPercentage, got.DiscountPercentage)
}

// Просроченный купон гасится в момент проверки.
func (s *CouponServiceTestSuite) TestValidate_Expired() {
	var userID int64 = 1
	coupon := domain.Coupon{
		Code:               "SAVE10",
		DiscountPercentage: 10,
		ExpiresAt:          time.Now().Add(-time.Minute),
		IsActive:           true,
		UserID:             userID,
	}

	s.mockCouponRepo.EXPECT().
		FindActiveByUserAndCode(gomock.Any(), userID, coupon.Code).
		Return(&coupon, nil)
	s.mockCouponRepo.EXPECT().
		SetInactive(gomock.Any(), userID, coupon.Code).
		Return(nil)

	_, err := s.service.Validate(context.Background(), userID, coupon.Code)
	s.Require().ErrorIs(err, domain.ErrCouponExpired)
}

func (s *CouponServiceTestSuite) TestValidate_NotFound() {
	var userID int64 = 1

	s.mockCouponRepo.EXPECT().
		FindActiveByUserAndCode(gomock.Any(), userID, "NOPE").
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.service.Validate(context.Background(), userID, "NOPE")
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *CouponServiceTestSuite) TestIssueReward() {
	var userID int64 = 1

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.CouponRepoName)).
		Return(s.mockCouponRepo, nil)

	// старый купон удаляется до создания нового
	deleteCall := s.mockCouponRepo.EXPECT().
		DeleteByUserID(gomock.Any(), userID).
		Return(nil)

	s.mockCouponRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateCoupon) (*domain.Coupon, error) {
			s.Equal(userID, args.UserID)
			s.EqualValues(rewardDiscountPercent, args.DiscountPercentage)
			s.True(strings.HasPrefix(args.Code, rewardCouponPrefix))
			s.Len(args.Code, len(rewardCouponPrefix)+rewardCouponCodeLength)
			s.Equal(strings.ToUpper(args.Code), args.Code)
			// срок жизни примерно 30 дней от текущего момента
			s.WithinDuration(time.Now().Add(rewardCouponLifetime), args.ExpiresAt, time.Minute)
			return &domain.Coupon{
				Code:               args.Code,
				DiscountPercentage: args.DiscountPercentage,
				ExpiresAt:          args.ExpiresAt,
				IsActive:           true,
				UserID:             args.UserID,
			}, nil
		}).After(deleteCall)

	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(context.Background(), s.mockTX)
		},
	)

	coupon, err := s.service.IssueReward(context.Background(), userID)
	s.Require().NoError(err)
	s.True(coupon.IsActive)
}

func (s *CouponServiceTestSuite) TestDeactivate() {
	var userID int64 = 1

	s.mockCouponRepo.EXPECT().
		SetInactive(gomock.Any(), userID, "GIFTABCDEF").
		Return(nil)

	s.Require().NoError(s.service.Deactivate(context.Background(), userID, "GIFTABCDEF"))
}
