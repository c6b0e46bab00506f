package payment_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workcheck/internal/payment"
	id "workcheck/pkg/domain"
	dErrors "workcheck/pkg/domain-errors"
)

func newService() (*payment.Service, id.UserID) {
	return payment.NewService(payment.NewInMemoryStore()), id.UserID(uuid.New())
}

func TestCreate(t *testing.T) {
	svc, userID := newService()

	p, err := svc.Create(context.Background(), userID, payment.CreateInput{
		Amount:   49.999,
		Currency: "cop",
		Method:   "card",
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, p.Amount, "amount is rounded to cents")
	assert.Equal(t, "COP", p.Currency)
	assert.Equal(t, payment.StatusPending, p.Status)
}

func TestCreate_Validation(t *testing.T) {
	svc, userID := newService()
	ctx := context.Background()

	cases := []struct {
		name  string
		input payment.CreateInput
	}{
		{"zero amount", payment.CreateInput{Amount: 0, Currency: "COP", Method: "card"}},
		{"negative amount", payment.CreateInput{Amount: -5, Currency: "COP", Method: "card"}},
		{"bad currency", payment.CreateInput{Amount: 10, Currency: "COPESOS", Method: "card"}},
		{"bad method", payment.CreateInput{Amount: 10, Currency: "COP", Method: "cash"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, userID, tc.input)
			require.Error(t, err)
			assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
		})
	}
}

func TestCreate_RequiresUser(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Create(context.Background(), id.UserID{}, payment.CreateInput{Amount: 10, Currency: "COP", Method: "card"})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestListByUser_OnlyOwnPayments(t *testing.T) {
	svc, userID := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, userID, payment.CreateInput{Amount: 10, Currency: "COP", Method: "card"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, id.UserID(uuid.New()), payment.CreateInput{Amount: 20, Currency: "COP", Method: "transfer"})
	require.NoError(t, err)

	payments, err := svc.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 10.0, payments[0].Amount)
}
