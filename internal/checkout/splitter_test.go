package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/config"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
)

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
	err      error
}

func (s *stubCatalog) FindByIDs(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func testConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		FreeShippingThresholdCents: 100000,
		FlatShippingFeeCents:       4900,
		TaxRateBasisPoints:         1800,
		Currency:                   "USD",
	}
}

func newProduct(sellerID uuid.UUID, priceCents, deliveryDays int) *models.Product {
	return &models.Product{
		ID:           uuid.New(),
		SellerID:     sellerID,
		Name:         "widget",
		SKU:          "W-1",
		PriceCents:   priceCents,
		Stock:        100,
		DeliveryDays: deliveryDays,
		Active:       true,
	}
}

func TestSplitTwoSellers(t *testing.T) {
	sellerA := uuid.New()
	sellerB := uuid.New()
	cheap := newProduct(sellerA, 50000, 2)   // $500 subtotal -> flat shipping
	pricey := newProduct(sellerB, 150000, 5) // $1500 subtotal -> free shipping

	catalog := &stubCatalog{products: map[uuid.UUID]*models.Product{
		cheap.ID:  cheap,
		pricey.ID: pricey,
	}}
	splitter, err := NewSplitter(catalog, testConfig())
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	drafts, err := splitter.Split(context.Background(), now, CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: enums.PaymentMethodCard,
		Lines: []CartLine{
			{ProductID: cheap.ID, Qty: 1},
			{ProductID: pricey.ID, Qty: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	byID := map[uuid.UUID]SellerDraft{}
	for _, d := range drafts {
		byID[d.SellerID] = d
	}

	a := byID[sellerA]
	assert.Equal(t, 50000, a.SubtotalCents)
	assert.Equal(t, 4900, a.ShippingCents, "below threshold pays flat shipping")
	assert.Equal(t, 9000, a.TaxCents, "18 percent of $500")
	assert.Equal(t, 63900, a.TotalCents)
	assert.Equal(t, now.AddDate(0, 0, 2), a.EstimatedDelivery)

	b := byID[sellerB]
	assert.Equal(t, 150000, b.SubtotalCents)
	assert.Equal(t, 0, b.ShippingCents, "above threshold ships free")
	assert.Equal(t, 27000, b.TaxCents)
	assert.Equal(t, 177000, b.TotalCents)
	assert.Equal(t, now.AddDate(0, 0, 5), b.EstimatedDelivery)

	// Sellers are ordered deterministically by id.
	assert.Equal(t, drafts[0].SellerID.String() < drafts[1].SellerID.String(), true)
}

func TestSplitShippingAtExactThreshold(t *testing.T) {
	seller := uuid.New()
	product := newProduct(seller, 100000, 3) // subtotal lands exactly on the threshold

	catalog := &stubCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}
	splitter, err := NewSplitter(catalog, testConfig())
	require.NoError(t, err)

	drafts, err := splitter.Split(context.Background(), time.Now().UTC(), CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: enums.PaymentMethodCard,
		Lines:         []CartLine{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, 100000, drafts[0].SubtotalCents)
	assert.Equal(t, 4900, drafts[0].ShippingCents, "free shipping starts strictly above the threshold")

	over := newProduct(seller, 100001, 3)
	catalog.products[over.ID] = over
	drafts, err = splitter.Split(context.Background(), time.Now().UTC(), CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: enums.PaymentMethodCard,
		Lines:         []CartLine{{ProductID: over.ID, Qty: 1}},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, 0, drafts[0].ShippingCents, "one cent over ships free")
}

func TestSplitMergesDuplicateLines(t *testing.T) {
	seller := uuid.New()
	product := newProduct(seller, 1000, 3)
	catalog := &stubCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}
	splitter, err := NewSplitter(catalog, testConfig())
	require.NoError(t, err)

	drafts, err := splitter.Split(context.Background(), time.Now(), CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: enums.PaymentMethodCOD,
		Lines: []CartLine{
			{ProductID: product.ID, Qty: 2},
			{ProductID: product.ID, Qty: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.Len(t, drafts[0].Lines, 1)
	assert.Equal(t, 5, drafts[0].Lines[0].Qty)
	assert.Equal(t, 5000, drafts[0].SubtotalCents)
}

func TestSplitEstimatedDeliveryUsesSlowestLine(t *testing.T) {
	seller := uuid.New()
	fast := newProduct(seller, 1000, 1)
	slow := newProduct(seller, 2000, 7)
	catalog := &stubCatalog{products: map[uuid.UUID]*models.Product{fast.ID: fast, slow.ID: slow}}
	splitter, err := NewSplitter(catalog, testConfig())
	require.NoError(t, err)

	now := time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC)
	drafts, err := splitter.Split(context.Background(), now, CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: enums.PaymentMethodUPI,
		Lines: []CartLine{
			{ProductID: fast.ID, Qty: 1},
			{ProductID: slow.ID, Qty: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, now.AddDate(0, 0, 7), drafts[0].EstimatedDelivery)
}

func TestSplitRejectsUnknownProduct(t *testing.T) {
	splitter, err := NewSplitter(&stubCatalog{products: map[uuid.UUID]*models.Product{}}, testConfig())
	require.NoError(t, err)

	_, err = splitter.Split(context.Background(), time.Now(), CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: enums.PaymentMethodCard,
		Lines:         []CartLine{{ProductID: uuid.New(), Qty: 1}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSplitRejectsInactiveProduct(t *testing.T) {
	seller := uuid.New()
	product := newProduct(seller, 1000, 3)
	product.Active = false
	catalog := &stubCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}
	splitter, err := NewSplitter(catalog, testConfig())
	require.NoError(t, err)

	_, err = splitter.Split(context.Background(), time.Now(), CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: enums.PaymentMethodCard,
		Lines:         []CartLine{{ProductID: product.ID, Qty: 1}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSplitValidatesInput(t *testing.T) {
	splitter, err := NewSplitter(&stubCatalog{}, testConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = splitter.Split(ctx, time.Now(), CheckoutRequest{CustomerID: uuid.Nil})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = splitter.Split(ctx, time.Now(), CheckoutRequest{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethodCard})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "empty cart rejected")

	_, err = splitter.Split(ctx, time.Now(), CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: "cheque",
		Lines:         []CartLine{{ProductID: uuid.New(), Qty: 1}},
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = splitter.Split(ctx, time.Now(), CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: enums.PaymentMethodCard,
		Lines:         []CartLine{{ProductID: uuid.New(), Qty: 0}},
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestTaxCentsRounding(t *testing.T) {
	// 18% of 33 cents is 5.94 -> rounds to 6.
	assert.Equal(t, 6, taxCents(33, 1800))
	// 18% of 25 cents is 4.5 -> half-up to 5.
	assert.Equal(t, 5, taxCents(25, 1800))
	assert.Equal(t, 0, taxCents(0, 1800))
	assert.Equal(t, 0, taxCents(100, 0))
}
