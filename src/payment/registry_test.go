package payment

import (
	"errors"
	"testing"
	"time"

	"rsv/src/models"
	"rsv/src/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeProvider struct {
	name    string
	accepts types.PaymentMethod
	refunds bool
	paid    int
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) Accept(method types.PaymentMethod, _ *models.Organization) bool {
	return method == p.accepts
}
func (p *fakeProvider) Pay(_ Spec) (*Result, error) {
	p.paid++
	return &Result{Successful: true, Reference: p.name + "-ref"}, nil
}
func (p *fakeProvider) SupportsRefund() bool { return p.refunds }
func (p *fakeProvider) Refund(_ *models.Reservation) error {
	if !p.refunds {
		return &CapabilityError{Provider: p.name, Operation: "refund"}
	}
	return nil
}

type fakeTransitioner struct {
	deadline time.Time
	calls    int
	err      error
}

func (f *fakeTransitioner) TransitionToOfflinePayment(_ uuid.UUID) (*time.Time, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &f.deadline, nil
}

func TestRegistryPicksFirstAcceptingProvider(t *testing.T) {
	first := &fakeProvider{name: "first", accepts: types.PAYMENT_METHOD_CARD}
	second := &fakeProvider{name: "second", accepts: types.PAYMENT_METHOD_CARD}
	r := NewRegistry(first, second)

	p, err := r.Resolve(types.PAYMENT_METHOD_CARD, nil)
	assert.NoError(t, err)
	assert.Equal(t, "first", p.Name())
}

func TestRegistryNoApplicableProvider(t *testing.T) {
	r := NewRegistry(&fakeProvider{name: "cards", accepts: types.PAYMENT_METHOD_CARD})

	_, err := r.Resolve(types.PAYMENT_METHOD_TRANSFER, nil)
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestRegistryRefundCapability(t *testing.T) {
	method := types.PAYMENT_METHOD_CARD
	reservation := &models.Reservation{ID: uuid.New(), PaymentMethod: &method}
	r := NewRegistry(&fakeProvider{name: "cards", accepts: types.PAYMENT_METHOD_CARD, refunds: false})

	err := r.Refund(reservation, nil)
	var capErr *CapabilityError
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, "cards", capErr.Provider)
}

func TestOfflineProviderParksReservation(t *testing.T) {
	deadline := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	ft := &fakeTransitioner{deadline: deadline}
	p := NewOfflineProvider(ft)
	org := &models.Organization{OfflinePayments: true}

	assert.True(t, p.Accept(types.PAYMENT_METHOD_TRANSFER, org))
	assert.False(t, p.Accept(types.PAYMENT_METHOD_CARD, org))
	assert.False(t, p.Accept(types.PAYMENT_METHOD_TRANSFER, &models.Organization{}))

	result, err := p.Pay(Spec{Reservation: &models.Reservation{ID: uuid.New()}})
	assert.NoError(t, err)
	assert.Equal(t, 1, ft.calls)
	assert.True(t, result.Successful)
	assert.True(t, result.Pending)
	assert.Equal(t, types.PAYMENT_REF_PENDING_TRANSFER, result.Reference)
	assert.Equal(t, deadline, *result.ValidUntil)
}

func TestOfflineProviderPropagatesTransitionError(t *testing.T) {
	boom := errors.New("event already started")
	p := NewOfflineProvider(&fakeTransitioner{err: boom})

	_, err := p.Pay(Spec{Reservation: &models.Reservation{ID: uuid.New()}})
	assert.ErrorIs(t, err, boom)
}

func TestOfflineProviderCannotRefund(t *testing.T) {
	p := NewOfflineProvider(&fakeTransitioner{})

	assert.False(t, p.SupportsRefund())
	var capErr *CapabilityError
	assert.ErrorAs(t, p.Refund(&models.Reservation{}), &capErr)
}

func TestFreeProviderOnlySettlesZeroTotals(t *testing.T) {
	p := NewFreeProvider()

	result, err := p.Pay(Spec{Reservation: &models.Reservation{Total: 0}})
	assert.NoError(t, err)
	assert.True(t, result.Successful)

	_, err = p.Pay(Spec{Reservation: &models.Reservation{Total: 10}})
	assert.Error(t, err)
}

func TestStripeProviderAcceptance(t *testing.T) {
	p := NewStripeProvider()
	acct := "acct_123"

	verified := &models.Organization{PaymentVerified: true, StripeAccountID: &acct}
	assert.True(t, p.Accept(types.PAYMENT_METHOD_CARD, verified))
	assert.False(t, p.Accept(types.PAYMENT_METHOD_TRANSFER, verified))
	assert.False(t, p.Accept(types.PAYMENT_METHOD_CARD, &models.Organization{PaymentVerified: true}))
	assert.False(t, p.Accept(types.PAYMENT_METHOD_CARD, nil))
}
