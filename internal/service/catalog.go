package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"cajapos/backend/internal/domain"
	"cajapos/backend/internal/money"
	"cajapos/backend/internal/store"
	"cajapos/backend/internal/xid"
)

func (s *Service) ListProducts(ctx context.Context, includeInactive bool) ([]domain.ProductView, error) {
	products, err := s.repo.ListProducts(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	views := make([]domain.ProductView, 0, len(products))
	for _, product := range products {
		views = append(views, productView(product))
	}
	return views, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.ProductView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ProductView{}, store.ErrInvalidInput
	}
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.ProductView{}, err
	}
	return productView(*product), nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.ProductView, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.ProductView{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	priceCents := money.ToCents(req.Price)
	costCents := money.ToCents(req.Cost)
	if req.Name == "" || req.Category == "" || priceCents < 1 || costCents < 0 || req.Stock < 0 || req.MinStock < 0 {
		return domain.ProductView{}, store.ErrInvalidInput
	}

	product, err := s.repo.CreateProduct(ctx, domain.Product{
		ID:         xid.New("prd"),
		Name:       req.Name,
		Category:   req.Category,
		Barcode:    strings.TrimSpace(req.Barcode),
		PriceCents: priceCents,
		CostCents:  costCents,
		Stock:      req.Stock,
		MinStock:   req.MinStock,
		Active:     true,
	})
	if err != nil {
		return domain.ProductView{}, err
	}

	s.logAudit(ctx, "product_create", "products", fmt.Sprintf("product=%s,name=%s,price=%d,stock=%d", product.ID, product.Name, product.PriceCents, product.Stock))
	return productView(*product), nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.ProductView, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.ProductView{}, fmt.Errorf("admin role required")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ProductView{}, store.ErrInvalidInput
	}
	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.ProductView{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.ProductView{}, store.ErrInvalidInput
		}
		updated.Name = name
	}
	if req.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*req.Category))
		if category == "" {
			return domain.ProductView{}, store.ErrInvalidInput
		}
		updated.Category = category
	}
	if req.Barcode != nil {
		updated.Barcode = strings.TrimSpace(*req.Barcode)
	}
	if req.Price != nil {
		priceCents := money.ToCents(*req.Price)
		if priceCents < 1 {
			return domain.ProductView{}, store.ErrInvalidInput
		}
		updated.PriceCents = priceCents
	}
	if req.Cost != nil {
		costCents := money.ToCents(*req.Cost)
		if costCents < 0 {
			return domain.ProductView{}, store.ErrInvalidInput
		}
		updated.CostCents = costCents
	}
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return domain.ProductView{}, store.ErrInvalidInput
		}
		updated.MinStock = *req.MinStock
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.ProductView{}, err
	}

	s.logAudit(ctx, "product_update", "products", fmt.Sprintf("product=%s,active=%t,price=%d", saved.ID, saved.Active, saved.PriceCents))
	return productView(*saved), nil
}

func (s *Service) CreatePurchase(ctx context.Context, req domain.PurchaseCreateRequest) (domain.PurchaseView, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.PurchaseView{}, fmt.Errorf("admin role required")
	}

	supplier := strings.TrimSpace(req.SupplierName)
	if supplier == "" || len(req.Items) == 0 {
		return domain.PurchaseView{}, store.ErrInvalidInput
	}

	items := make([]domain.PurchaseItem, 0, len(req.Items))
	newPriceCents := make(map[string]int64, len(req.Items))
	var totalCents int64
	for _, line := range req.Items {
		productID := strings.TrimSpace(line.ProductID)
		unitCost := money.ToCents(line.UnitCost)
		if productID == "" || line.Qty < 1 || unitCost < 1 || line.MarginPct < 0 || line.MarginPct > 500 {
			return domain.PurchaseView{}, store.ErrInvalidInput
		}
		subtotal := int64(line.Qty) * unitCost
		items = append(items, domain.PurchaseItem{
			ProductID:     productID,
			Qty:           line.Qty,
			UnitCostCents: unitCost,
			SubtotalCents: subtotal,
		})
		totalCents += subtotal

		// Selling price is derived from the new cost plus the margin.
		if line.MarginPct > 0 {
			newPriceCents[productID] = unitCost + int64(math.Round(float64(unitCost)*line.MarginPct/100))
		}
	}

	var payable *domain.Account
	if req.OnCredit {
		dueDate, err := parseDueDate(req.DueDate)
		if err != nil {
			return domain.PurchaseView{}, err
		}
		payable = &domain.Account{
			ID:          xid.New("acct"),
			Kind:        domain.AccountKindPayable,
			PartyName:   supplier,
			Description: fmt.Sprintf("Compra a crédito %s", strings.TrimSpace(req.InvoiceRef)),
			AmountCents: totalCents,
			DueDate:     dueDate,
			CreatedAt:   s.now(),
		}
	}

	purchase, err := s.repo.CreatePurchase(ctx, domain.Purchase{
		ID:           xid.New("pur"),
		SupplierName: supplier,
		InvoiceRef:   strings.TrimSpace(req.InvoiceRef),
		TotalCents:   totalCents,
		CreatedAt:    s.now(),
		Items:        items,
	}, newPriceCents, payable)
	if err != nil {
		return domain.PurchaseView{}, err
	}

	s.logAudit(ctx, "purchase_create", "purchases", fmt.Sprintf("purchase=%s,supplier=%s,total=%d,on_credit=%t", purchase.ID, supplier, totalCents, req.OnCredit))
	return purchaseView(*purchase), nil
}

func (s *Service) ListPurchases(ctx context.Context, limit int) ([]domain.PurchaseView, error) {
	if limit < 1 {
		limit = 50
	}
	purchases, err := s.repo.ListPurchases(ctx, limit)
	if err != nil {
		return nil, err
	}
	views := make([]domain.PurchaseView, 0, len(purchases))
	for _, purchase := range purchases {
		views = append(views, purchaseView(purchase))
	}
	return views, nil
}
