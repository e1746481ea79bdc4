package events

import (
	"context"
	"testing"
	"time"

	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/ilp-labs/sender-lib/psk"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHub(t *testing.T) *FulfillmentHub {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	hub := NewFulfillmentHub(logger)
	require.NoError(t, hub.Start(context.Background()))
	t.Cleanup(hub.Stop)

	return hub
}

func conditionPair(t *testing.T, account string) (types.Fulfillment, string) {
	t.Helper()

	secret := make([]byte, psk.SharedSecretSize)
	copy(secret, account)

	fields := psk.RequestFields{
		DestinationAccount: account,
		DestinationAmount:  "10",
		ExpiresAt:          time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}

	fulfillment, err := psk.DeriveFulfillment(fields, secret)
	require.NoError(t, err)
	cond, err := psk.DeriveCondition(fields, secret)
	require.NoError(t, err)

	return fulfillment, cond.String()
}

func TestHubDeliversToMatchingWaiter(t *testing.T) {
	hub := testHub(t)
	fulfillment, condition := conditionPair(t, "example.alice")

	ch, cancel := hub.Register(condition)
	defer cancel()

	hub.Sink() <- types.FulfillmentEvent{
		Transfer:    &types.Transfer{ID: "tid-1", ExecutionCondition: condition},
		Fulfillment: fulfillment,
		ReceivedAt:  time.Now(),
	}

	select {
	case got := <-ch:
		assert.Equal(t, fulfillment, got)
	case <-time.After(time.Second):
		t.Fatal("fulfillment was not delivered")
	}

	assert.Equal(t, 0, hub.ActiveWaiters())
}

func TestHubFiltersByCondition(t *testing.T) {
	hub := testHub(t)
	fulfillment, condition := conditionPair(t, "example.alice")
	_, otherCondition := conditionPair(t, "example.bob")

	ch, cancel := hub.Register(otherCondition)
	defer cancel()

	hub.Sink() <- types.FulfillmentEvent{
		Transfer:    &types.Transfer{ID: "tid-1", ExecutionCondition: condition},
		Fulfillment: fulfillment,
	}

	select {
	case <-ch:
		t.Fatal("waiter for a different condition must not be satisfied")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDropsNonVerifyingPreimage(t *testing.T) {
	hub := testHub(t)
	fulfillment, condition := conditionPair(t, "example.alice")

	ch, cancel := hub.Register(condition)
	defer cancel()

	bogus := append(types.Fulfillment{}, fulfillment...)
	bogus[0] ^= 0x01

	hub.Sink() <- types.FulfillmentEvent{
		Transfer:    &types.Transfer{ID: "tid-1", ExecutionCondition: condition},
		Fulfillment: bogus,
	}

	select {
	case <-ch:
		t.Fatal("non-verifying preimage must not satisfy a waiter")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, 1, hub.ActiveWaiters())
}

func TestHubCancelRemovesWaiter(t *testing.T) {
	hub := testHub(t)
	_, condition := conditionPair(t, "example.alice")

	_, cancel := hub.Register(condition)
	_, cancelSecond := hub.Register(condition)
	assert.Equal(t, 2, hub.ActiveWaiters())

	cancel()
	assert.Equal(t, 1, hub.ActiveWaiters())

	// Cancel is idempotent.
	cancel()
	assert.Equal(t, 1, hub.ActiveWaiters())

	cancelSecond()
	assert.Equal(t, 0, hub.ActiveWaiters())
}

func TestHubStartTwice(t *testing.T) {
	hub := testHub(t)
	assert.Error(t, hub.Start(context.Background()))
}
