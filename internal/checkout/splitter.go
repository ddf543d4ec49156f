package checkout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/config"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
)

// CatalogLookup resolves product rows for the splitter. The fulfillment
// engine never owns catalog CRUD; it only reads through this interface.
type CatalogLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
}

// Splitter turns one cart into independently priced per-seller drafts.
type Splitter struct {
	catalog CatalogLookup
	cfg     config.CheckoutConfig
}

// NewSplitter builds the splitter over the injected catalog.
func NewSplitter(catalog CatalogLookup, cfg config.CheckoutConfig) (*Splitter, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	return &Splitter{catalog: catalog, cfg: cfg}, nil
}

// Split validates the cart, resolves every product, and groups lines by
// seller. Any unknown or inactive product rejects the whole checkout before a
// single unit of stock is touched. Sellers come back in sorted order so the
// split is deterministic; line order within a seller follows the cart.
func (s *Splitter) Split(ctx context.Context, now time.Time, req CheckoutRequest) ([]SellerDraft, error) {
	if req.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if len(req.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !req.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", req.PaymentMethod))
	}

	lines, err := mergeLines(req.Lines)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	grouped := make(map[uuid.UUID][]DraftLine)
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok || product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s not found", line.ProductID))
		}
		if !product.Active {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q is no longer available", product.Name))
		}
		grouped[product.SellerID] = append(grouped[product.SellerID], DraftLine{
			ProductID:      product.ID,
			Name:           product.Name,
			SKU:            product.SKU,
			ImageURL:       product.ImageURL,
			Variant:        line.Variant,
			UnitPriceCents: product.PriceCents,
			Qty:            line.Qty,
			DeliveryDays:   product.DeliveryDays,
		})
	}

	sellers := make([]uuid.UUID, 0, len(grouped))
	for sellerID := range grouped {
		sellers = append(sellers, sellerID)
	}
	sort.Slice(sellers, func(i, j int) bool { return sellers[i].String() < sellers[j].String() })

	drafts := make([]SellerDraft, 0, len(sellers))
	for _, sellerID := range sellers {
		drafts = append(drafts, s.priceDraft(sellerID, grouped[sellerID], now))
	}
	return drafts, nil
}

func (s *Splitter) priceDraft(sellerID uuid.UUID, lines []DraftLine, now time.Time) SellerDraft {
	draft := SellerDraft{SellerID: sellerID, Lines: lines}

	maxDeliveryDays := 0
	for _, line := range lines {
		draft.SubtotalCents += line.UnitPriceCents * line.Qty
		if line.DeliveryDays > maxDeliveryDays {
			maxDeliveryDays = line.DeliveryDays
		}
	}

	// Free shipping starts strictly above the threshold; a subtotal landing
	// exactly on it still pays the flat fee.
	draft.ShippingCents = s.cfg.FlatShippingFeeCents
	if draft.SubtotalCents > s.cfg.FreeShippingThresholdCents {
		draft.ShippingCents = 0
	}
	draft.TaxCents = taxCents(draft.SubtotalCents, s.cfg.TaxRateBasisPoints)
	draft.TotalCents = draft.SubtotalCents + draft.ShippingCents + draft.TaxCents
	draft.EstimatedDelivery = now.AddDate(0, 0, maxDeliveryDays)
	return draft
}

// taxCents applies the basis-point rate with half-up rounding on the cent.
func taxCents(subtotalCents, rateBasisPoints int) int {
	if subtotalCents <= 0 || rateBasisPoints <= 0 {
		return 0
	}
	tax := decimal.NewFromInt(int64(subtotalCents)).
		Mul(decimal.NewFromInt(int64(rateBasisPoints))).
		Div(decimal.NewFromInt(10000)).
		Round(0)
	return int(tax.IntPart())
}

func mergeLines(lines []CartLine) ([]CartLine, error) {
	merged := make([]CartLine, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line missing product id")
		}
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("qty must be positive for product %s", line.ProductID))
		}
		if at, seen := index[line.ProductID]; seen {
			merged[at].Qty += line.Qty
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}
