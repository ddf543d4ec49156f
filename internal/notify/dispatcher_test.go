package notify

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
)

type memoryStore struct {
	mu      sync.Mutex
	rows    []*models.Notification
	failing bool
}

func (s *memoryStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("db down")
	}
	s.rows = append(s.rows, n)
	return nil
}

type recordingTransport struct {
	name string
	err  error

	mu    sync.Mutex
	seen  []Message
	calls int
}

func (t *recordingTransport) Name() string { return t.name }

func (t *recordingTransport) Send(_ context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.err != nil {
		return t.err
	}
	t.seen = append(t.seen, msg)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.Disabled, Output: io.Discard})
}

func validMessage() Message {
	orderID := uuid.New()
	return Message{
		RecipientID: uuid.New(),
		Kind:        enums.NotificationKindOrderStatus,
		Title:       "Order shipped",
		Body:        "Your order is on the way",
		OrderID:     &orderID,
	}
}

func TestDispatchPersistsAndFansOut(t *testing.T) {
	store := &memoryStore{}
	email := &recordingTransport{name: "email"}
	sms := &recordingTransport{name: "sms"}
	d, err := NewDispatcher(store, testLogger(), email, sms)
	require.NoError(t, err)

	msg := validMessage()
	d.Dispatch(context.Background(), msg)

	require.Len(t, store.rows, 1)
	assert.Equal(t, msg.RecipientID, store.rows[0].RecipientID)
	assert.Equal(t, msg.Title, store.rows[0].Title)
	assert.Equal(t, msg.Body, store.rows[0].Message)
	require.Len(t, email.seen, 1)
	require.Len(t, sms.seen, 1)
}

func TestDispatchFailingTransportDoesNotBlockOthers(t *testing.T) {
	store := &memoryStore{}
	broken := &recordingTransport{name: "email", err: errors.New("smtp refused")}
	sms := &recordingTransport{name: "sms"}
	d, err := NewDispatcher(store, testLogger(), broken, sms)
	require.NoError(t, err)

	d.Dispatch(context.Background(), validMessage())

	assert.Equal(t, 1, broken.calls)
	assert.Len(t, sms.seen, 1, "healthy transport still delivers")
	assert.Len(t, store.rows, 1, "in-app copy still written")
}

func TestDispatchStoreFailureIsSwallowed(t *testing.T) {
	store := &memoryStore{failing: true}
	sms := &recordingTransport{name: "sms"}
	d, err := NewDispatcher(store, testLogger(), sms)
	require.NoError(t, err)

	// Must not panic or surface the storage error.
	d.Dispatch(context.Background(), validMessage())
	assert.Len(t, sms.seen, 1)
}

func TestDispatchDropsInvalidMessages(t *testing.T) {
	store := &memoryStore{}
	transport := &recordingTransport{name: "email"}
	d, err := NewDispatcher(store, testLogger(), transport)
	require.NoError(t, err)

	d.Dispatch(context.Background(),
		Message{},
		Message{RecipientID: uuid.New(), Kind: "bogus", Title: "t", Body: "b"},
		Message{RecipientID: uuid.New(), Kind: enums.NotificationKindOrderPlaced, Title: "  ", Body: "b"},
	)

	assert.Empty(t, store.rows)
	assert.Zero(t, transport.calls)
}

func TestDispatchMultipleMessages(t *testing.T) {
	store := &memoryStore{}
	d, err := NewDispatcher(store, testLogger())
	require.NoError(t, err)

	d.Dispatch(context.Background(), validMessage(), validMessage(), validMessage())
	assert.Len(t, store.rows, 3)
}
