package events

import (
	"context"
	"sync"

	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/ilp-labs/sender-lib/psk"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// eventChanBuffer bounds how many undispatched events the hub absorbs before
// the ledger subscription blocks.
const eventChanBuffer = 16

// FulfillmentHub fans the process-wide fulfillment stream out to one-shot
// waiters keyed by execution condition. Waiter lifetime equals the lifetime
// of the call that registered it: the cancel func returned by Register must
// be invoked on every exit path.
type FulfillmentHub struct {
	logger    *logrus.Logger
	eventChan chan types.FulfillmentEvent

	waiters      map[string][]chan types.Fulfillment
	waitersMutex sync.Mutex

	stopChan   chan struct{}
	running    bool
	stateMutex sync.Mutex
}

// NewFulfillmentHub creates a new fulfillment hub instance.
//
// Parameters:
// - logger: the logger for logging purposes.
//
// Returns:
// - *FulfillmentHub: the new hub instance.
func NewFulfillmentHub(logger *logrus.Logger) *FulfillmentHub {
	return &FulfillmentHub{
		logger:    logger,
		eventChan: make(chan types.FulfillmentEvent, eventChanBuffer),
		waiters:   make(map[string][]chan types.Fulfillment),
		stopChan:  make(chan struct{}),
	}
}

// Sink returns the channel the ledger subscription should feed.
func (h *FulfillmentHub) Sink() chan<- types.FulfillmentEvent {
	return h.eventChan
}

// Start starts the dispatch loop.
//
// Parameters:
// - ctx: the context bounding the dispatch loop lifetime.
//
// Returns:
// - error: an error if the hub is already running.
func (h *FulfillmentHub) Start(ctx context.Context) error {
	h.stateMutex.Lock()
	defer h.stateMutex.Unlock()

	if h.running {
		return errors.New("fulfillment hub is already running")
	}
	h.running = true
	h.stopChan = make(chan struct{})

	go h.dispatch(ctx)
	return nil
}

// Stop stops the dispatch loop. Registered waiters stay registered; their
// owning calls release them through their cancel funcs.
func (h *FulfillmentHub) Stop() {
	h.stateMutex.Lock()
	defer h.stateMutex.Unlock()

	if !h.running {
		return
	}
	close(h.stopChan)
	h.running = false
}

// Register installs a one-shot waiter for the given execution condition.
// The returned channel receives at most one verified fulfillment. The cancel
// func removes the waiter and is safe to call multiple times.
//
// Parameters:
// - executionCondition: the condition URI the waiter is filtered by.
//
// Returns:
// - <-chan types.Fulfillment: the one-shot delivery channel.
// - func(): the cancel func releasing the registration.
func (h *FulfillmentHub) Register(executionCondition string) (<-chan types.Fulfillment, func()) {
	ch := make(chan types.Fulfillment, 1)

	h.waitersMutex.Lock()
	h.waiters[executionCondition] = append(h.waiters[executionCondition], ch)
	h.waitersMutex.Unlock()

	cancel := func() {
		h.waitersMutex.Lock()
		defer h.waitersMutex.Unlock()

		remaining := h.waiters[executionCondition][:0]
		for _, waiter := range h.waiters[executionCondition] {
			if waiter != ch {
				remaining = append(remaining, waiter)
			}
		}
		if len(remaining) == 0 {
			delete(h.waiters, executionCondition)
		} else {
			h.waiters[executionCondition] = remaining
		}
	}

	return ch, cancel
}

// ActiveWaiters returns the number of registered waiters.
func (h *FulfillmentHub) ActiveWaiters() int {
	h.waitersMutex.Lock()
	defer h.waitersMutex.Unlock()

	count := 0
	for _, waiters := range h.waiters {
		count += len(waiters)
	}
	return count
}

// dispatch delivers incoming events to matching waiters until the hub is
// stopped or the context is cancelled.
func (h *FulfillmentHub) dispatch(ctx context.Context) {
	stopChan := h.stopChan

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Fulfillment dispatch stopped due to context cancellation")
			return

		case <-stopChan:
			h.logger.Info("Fulfillment dispatch stopped")
			return

		case event := <-h.eventChan:
			h.deliver(event)
		}
	}
}

// deliver hands a verified fulfillment to every waiter registered for the
// event's condition. Events whose preimage does not hash to the condition
// are dropped so a bogus notification can never satisfy a waiter.
func (h *FulfillmentHub) deliver(event types.FulfillmentEvent) {
	if event.Transfer == nil {
		return
	}

	condition := event.Transfer.ExecutionCondition
	if !psk.VerifyFulfillment(event.Fulfillment, condition) {
		h.logger.WithFields(logrus.Fields{
			"transferId": event.Transfer.ID,
			"condition":  condition,
		}).Warn("Dropping fulfillment event with non-matching preimage")
		return
	}

	h.waitersMutex.Lock()
	waiters := h.waiters[condition]
	delete(h.waiters, condition)
	h.waitersMutex.Unlock()

	for _, waiter := range waiters {
		// Buffered one-shot channel, never blocks.
		waiter <- event.Fulfillment
	}

	if len(waiters) > 0 {
		h.logger.WithFields(logrus.Fields{
			"transferId": event.Transfer.ID,
			"waiters":    len(waiters),
		}).Debug("Delivered fulfillment to waiters")
	}
}
