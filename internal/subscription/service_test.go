package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"workcheck/internal/subscription"
	id "workcheck/pkg/domain"
	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *subscription.InMemoryStore
	service *subscription.Service
	userID  id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = subscription.NewInMemoryStore()
	s.service = subscription.NewService(s.store, 3)
	s.userID = id.UserID(uuid.New())
}

func (s *ServiceSuite) TestSubscribe() {
	sub, err := s.service.Subscribe(context.Background(), s.userID, subscription.PlanPremium)
	s.Require().NoError(err)
	s.Equal(subscription.PlanPremium, sub.Plan)
	s.Equal(subscription.StatusActive, sub.Status)
	s.False(sub.ID.IsNil())
}

func (s *ServiceSuite) TestSubscribe_ReplacesPlan() {
	ctx := context.Background()

	_, err := s.service.Subscribe(ctx, s.userID, subscription.PlanFree)
	s.Require().NoError(err)
	_, err = s.service.Subscribe(ctx, s.userID, subscription.PlanStandard)
	s.Require().NoError(err)

	current, err := s.service.Current(ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(subscription.PlanStandard, current.Plan)
}

func (s *ServiceSuite) TestSubscribe_InvalidPlan() {
	_, err := s.service.Subscribe(context.Background(), s.userID, subscription.Plan("gold"))
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestCurrent_DefaultsToFree() {
	current, err := s.service.Current(context.Background(), s.userID)
	s.Require().NoError(err)
	s.Equal(subscription.PlanFree, current.Plan)
	s.Equal(subscription.StatusActive, current.Status)
}

func (s *ServiceSuite) TestConsumeSearch_FreePlanHitsLimit() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.service.ConsumeSearch(ctx, s.userID))
	}

	err := s.service.ConsumeSearch(ctx, s.userID)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestConsumeSearch_PaidPlanIsUnlimited() {
	ctx := context.Background()

	_, err := s.service.Subscribe(ctx, s.userID, subscription.PlanPremium)
	s.Require().NoError(err)

	for i := 0; i < 50; i++ {
		s.Require().NoError(s.service.ConsumeSearch(ctx, s.userID))
	}
}

func (s *ServiceSuite) TestConsumeSearch_CounterResetsWithMonth() {
	november := requestcontext.WithTime(context.Background(), time.Date(2025, 11, 30, 12, 0, 0, 0, time.UTC))
	december := requestcontext.WithTime(context.Background(), time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.service.ConsumeSearch(november, s.userID))
	}
	err := s.service.ConsumeSearch(november, s.userID)
	s.Require().Error(err)

	s.NoError(s.service.ConsumeSearch(december, s.userID), "a new month starts a fresh allowance")
}

func (s *ServiceSuite) TestConsumeSearch_UpgradeLiftsTheGate() {
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_ = s.service.ConsumeSearch(ctx, s.userID)
	}
	s.Require().Error(s.service.ConsumeSearch(ctx, s.userID))

	_, err := s.service.Subscribe(ctx, s.userID, subscription.PlanStandard)
	s.Require().NoError(err)
	s.NoError(s.service.ConsumeSearch(ctx, s.userID))
}
