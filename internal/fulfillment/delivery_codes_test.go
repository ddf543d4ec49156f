package fulfillment

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/catalog"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/checkout"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
)

type fakeCodeStore struct {
	issued map[string]string
}

func (s *fakeCodeStore) Issue(_ context.Context, kind, recipient string) (string, error) {
	if s.issued == nil {
		s.issued = map[string]string{}
	}
	code := "482913"
	s.issued[kind+":"+recipient] = code
	return code, nil
}

func (s *fakeCodeStore) Outstanding(_ context.Context, kind, recipient string) (bool, error) {
	_, ok := s.issued[kind+":"+recipient]
	return ok, nil
}

func (s *fakeCodeStore) Check(_ context.Context, kind, recipient, submitted string) error {
	stored, ok := s.issued[kind+":"+recipient]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "verification code expired or not issued")
	}
	if stored != submitted {
		return pkgerrors.New(pkgerrors.CodeValidation, "verification code does not match")
	}
	delete(s.issued, kind+":"+recipient)
	return nil
}

func newCodesFixture(t *testing.T) (*fixture, *fakeCodeStore) {
	t.Helper()
	f := newFixture(t)
	codes := &fakeCodeStore{}

	splitter, err := checkout.NewSplitter(catalog.NewRepository(f.db), checkoutConfig())
	require.NoError(t, err)

	svc, err := NewService(Params{
		Tx:          gormTxRunner{db: f.db},
		Splitter:    splitter,
		Orders:      f.orders,
		Stats:       f.stats,
		Refunds:     f.refunder,
		Notifier:    f.notifier,
		Broadcaster: f.broadcaster,
		Codes:       codes,
		Logger:      logger.New(logger.Options{Level: zerolog.Disabled, Output: io.Discard}),
		Checkout:    checkoutConfig(),
	})
	require.NoError(t, err)
	f.svc = svc
	return f, codes
}

func TestOutForDeliveryIssuesConfirmationCode(t *testing.T) {
	f, codes := newCodesFixture(t)
	order := placeSingleOrder(t, f, 5)
	shipped := advance(t, f, order,
		enums.OrderStatusConfirmed, enums.OrderStatusProcessing,
		enums.OrderStatusPacked, enums.OrderStatusShipped,
	)

	advance(t, f, shipped, enums.OrderStatusOutForDelivery)

	assert.Contains(t, codes.issued, "delivery:"+order.ID.String())
	updates := f.notifier.ofKind(enums.NotificationKindOrderStatus)
	require.NotEmpty(t, updates)
	last := updates[len(updates)-1]
	assert.True(t, strings.Contains(last.Body, "482913"), "code shared with the customer")
}

func TestDeliveredRequiresOutstandingCode(t *testing.T) {
	f, codes := newCodesFixture(t)
	order := placeSingleOrder(t, f, 5)
	out := advance(t, f, order,
		enums.OrderStatusConfirmed, enums.OrderStatusProcessing,
		enums.OrderStatusPacked, enums.OrderStatusShipped,
		enums.OrderStatusOutForDelivery,
	)

	_, err := f.svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID: out.ID,
		To:      enums.OrderStatusDelivered,
		ActorID: order.SellerID,
	})
	require.Error(t, err, "issued code cannot be skipped")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	// Once the code is gone (expired), delivery no longer demands it.
	delete(codes.issued, "delivery:"+order.ID.String())
	delivered, err := f.svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID: out.ID,
		To:      enums.OrderStatusDelivered,
		ActorID: order.SellerID,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, delivered.Status)
}

func TestDeliveredChecksSubmittedCode(t *testing.T) {
	f, codes := newCodesFixture(t)
	order := placeSingleOrder(t, f, 5)
	out := advance(t, f, order,
		enums.OrderStatusConfirmed, enums.OrderStatusProcessing,
		enums.OrderStatusPacked, enums.OrderStatusShipped,
		enums.OrderStatusOutForDelivery,
	)

	_, err := f.svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID:          out.ID,
		To:               enums.OrderStatusDelivered,
		ActorID:          order.SellerID,
		ConfirmationCode: "000000",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	reloaded, lerr := f.orders.FindOrder(context.Background(), order.ID)
	require.NoError(t, lerr)
	assert.Equal(t, enums.OrderStatusOutForDelivery, reloaded.Status)

	delivered, err := f.svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID:          out.ID,
		To:               enums.OrderStatusDelivered,
		ActorID:          order.SellerID,
		ConfirmationCode: "482913",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, delivered.Status)
	assert.Empty(t, codes.issued, "matched code is consumed")
}
