package ach

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closingdesk/commission-backend/pkg/enums"
)

var fixedNow = time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestSimulatedProvidersTable(t *testing.T) {
	payoutID := uuid.MustParse("3f2a9c1e-5b7d-4e8f-9a0b-1c2d3e4f5a6b")
	millis := fixedNow.UnixMilli()
	amount := decimal.RequireFromString("7625.00")

	cases := []struct {
		provider enums.ACHProvider
		status   Status
		ref      string
		eta      time.Duration
		fee      string
	}{
		{enums.ACHProviderMock, StatusCompleted, fmt.Sprintf("mock_ach_%d_3f2a9c1e", millis), 72 * time.Hour, ""},
		{enums.ACHProviderStripe, StatusPending, fmt.Sprintf("po_%d3f2a9c1e", millis), 48 * time.Hour, "61.00"},
		{enums.ACHProviderPlaid, StatusPending, fmt.Sprintf("plaid_transfer_%d_3f2a9c1e", millis), 24 * time.Hour, "1.50"},
		{enums.ACHProviderDwolla, StatusPending, fmt.Sprintf("dwolla_%s_%d", payoutID, millis), 72 * time.Hour, "0.50"},
	}

	dispatcher := NewSimulatedDispatcher(fixedClock)
	for _, tc := range cases {
		t.Run(string(tc.provider), func(t *testing.T) {
			res, err := dispatcher.Process(context.Background(), tc.provider, Request{Amount: amount, PayoutID: payoutID})
			require.NoError(t, err)
			assert.Equal(t, tc.provider, res.Provider)
			assert.Equal(t, tc.status, res.Status)
			assert.Equal(t, tc.ref, res.ReferenceID)
			assert.True(t, fixedNow.Add(tc.eta).Equal(res.EstimatedCompletion))
			if tc.fee == "" {
				assert.Nil(t, res.ProviderFee)
				return
			}
			require.NotNil(t, res.ProviderFee)
			assert.True(t, decimal.RequireFromString(tc.fee).Equal(*res.ProviderFee), "fee %s", res.ProviderFee)
		})
	}
}

func TestDispatcherRejectsUnknownProvider(t *testing.T) {
	dispatcher := NewSimulatedDispatcher(fixedClock)
	_, err := dispatcher.Process(context.Background(), enums.ACHProvider("bogus"), Request{Amount: decimal.NewFromInt(10), PayoutID: uuid.New()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedProvider))
	assert.False(t, dispatcher.Supports("bogus"))

	var nilDispatcher *Dispatcher
	_, err = nilDispatcher.Process(context.Background(), enums.ACHProviderMock, Request{})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestProviderValidatesRequest(t *testing.T) {
	p := NewMockProvider(fixedClock)
	_, err := p.Process(context.Background(), Request{Amount: decimal.Zero, PayoutID: uuid.New()})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = p.Process(context.Background(), Request{Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Process(ctx, Request{Amount: decimal.NewFromInt(5), PayoutID: uuid.New()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckMinimum(t *testing.T) {
	assert.ErrorIs(t, CheckMinimum(decimal.RequireFromString("0.50"), DefaultMinimum), ErrBelowMinimum)
	assert.NoError(t, CheckMinimum(decimal.RequireFromString("1.00"), DefaultMinimum))
	assert.NoError(t, CheckMinimum(decimal.RequireFromString("1500"), DefaultMinimum))
}

func TestNewDispatcherLaterProviderWins(t *testing.T) {
	first := NewMockProvider(fixedClock)
	later := NewMockProvider(func() time.Time { return fixedNow.Add(time.Hour) })
	dispatcher := NewDispatcher(first, nil, later)

	res, err := dispatcher.Process(context.Background(), enums.ACHProviderMock, Request{Amount: decimal.NewFromInt(2), PayoutID: uuid.New()})
	require.NoError(t, err)
	assert.True(t, fixedNow.Add(time.Hour+72*time.Hour).Equal(res.EstimatedCompletion))
}

func TestSimulatedDispatcherHonoursEnabledList(t *testing.T) {
	dispatcher := NewSimulatedDispatcher(fixedClock, enums.ACHProviderMock, enums.ACHProviderPlaid)

	assert.True(t, dispatcher.Supports(enums.ACHProviderMock))
	assert.True(t, dispatcher.Supports(enums.ACHProviderPlaid))
	assert.False(t, dispatcher.Supports(enums.ACHProviderStripe))

	_, err := dispatcher.Process(context.Background(), enums.ACHProviderDwolla, Request{Amount: decimal.NewFromInt(10), PayoutID: uuid.New()})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}
