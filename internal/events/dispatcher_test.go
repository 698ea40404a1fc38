package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string

	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.Subject)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.Subject)
		return nil
	})
	d.Subscribe(EventAccountStatusChanged, func(context.Context, Event) error {
		t.Fatal("unexpected delivery")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventTicketCreated, "AB12CD34", nil)))
	assert.Equal(t, []string{"first:AB12CD34", "second:AB12CD34"}, got)
}

func TestDispatcherRunsAllHandlersOnFailure(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	calls := 0

	d.Subscribe(EventRegistrationOtpIssued, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventRegistrationOtpIssued, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), New(EventRegistrationOtpIssued, "a@x.com", nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestNewStampsEvent(t *testing.T) {
	e := New(EventAccountStatusChanged, "alice", AccountStatusChangedPayload{Username: "alice"})
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "alice", e.Subject)
}
