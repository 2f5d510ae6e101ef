package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cajapos/backend/internal/domain"
	"cajapos/backend/internal/events"
	"cajapos/backend/internal/money"
	"cajapos/backend/internal/store"
	"cajapos/backend/internal/xid"
)

func saleDescription(method string, saleID string) string {
	switch method {
	case domain.PayMethodCash:
		return fmt.Sprintf("Venta en Efectivo #%s", saleID)
	case domain.PayMethodQR:
		return fmt.Sprintf("Venta QR #%s", saleID)
	default:
		return fmt.Sprintf("Venta a Crédito #%s", saleID)
	}
}

func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.SaleView, error) {
	operatorID := strings.TrimSpace(req.OperatorID)
	if operatorID == "" {
		if actor, ok := ActorFromContext(ctx); ok {
			operatorID = actor.Username
		}
	}
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method == "" {
		method = domain.PayMethodCash
	}
	switch method {
	case domain.PayMethodCash, domain.PayMethodCredit, domain.PayMethodQR:
	default:
		return domain.SaleView{}, store.ErrInvalidInput
	}
	if operatorID == "" || len(req.Items) == 0 {
		return domain.SaleView{}, store.ErrInvalidInput
	}

	// Aggregate duplicate lines so stock is decremented once per product.
	qtyByProduct := make(map[string]int, len(req.Items))
	order := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" || line.Qty < 1 {
			return domain.SaleView{}, store.ErrInvalidInput
		}
		if _, seen := qtyByProduct[productID]; !seen {
			order = append(order, productID)
		}
		qtyByProduct[productID] += line.Qty
	}

	saleID := xid.New("sale")
	items := make([]domain.SaleItem, 0, len(order))
	var totalCents int64
	for _, productID := range order {
		product, err := s.repo.GetProductByID(ctx, productID)
		if err != nil {
			return domain.SaleView{}, err
		}
		if !product.Active {
			return domain.SaleView{}, store.ErrNotFound
		}
		qty := qtyByProduct[productID]
		subtotal := int64(qty) * product.PriceCents
		items = append(items, domain.SaleItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Qty:            qty,
			UnitPriceCents: product.PriceCents,
			SubtotalCents:  subtotal,
		})
		totalCents += subtotal
	}

	// Cash and QR sales post to the open register ledger. A sale with no
	// open session still completes, it just leaves no drawer entry.
	var movement *domain.CashMovement
	if method != domain.PayMethodCredit {
		active, err := s.repo.GetActiveSessionByOperator(ctx, operatorID)
		if err == nil {
			movement = &domain.CashMovement{
				ID:          xid.New("mov"),
				SessionID:   active.ID,
				Type:        domain.MovementTypeSale,
				Category:    method,
				AmountCents: totalCents,
				Description: saleDescription(method, saleID),
				SaleID:      saleID,
				CreatedAt:   s.now(),
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			return domain.SaleView{}, err
		}
	}

	var receivable *domain.Account
	if method == domain.PayMethodCredit {
		customer := strings.TrimSpace(req.CustomerName)
		if customer == "" {
			return domain.SaleView{}, fmt.Errorf("%w: customer name required for credit sale", store.ErrInvalidInput)
		}
		dueDate, err := parseDueDate(req.DueDate)
		if err != nil {
			return domain.SaleView{}, err
		}
		receivable = &domain.Account{
			ID:          xid.New("acct"),
			Kind:        domain.AccountKindReceivable,
			PartyName:   customer,
			Description: saleDescription(method, saleID),
			AmountCents: totalCents,
			DueDate:     dueDate,
			SaleID:      saleID,
			CreatedAt:   s.now(),
		}
	}

	sale, err := s.repo.CreateSale(ctx, domain.Sale{
		ID:            saleID,
		OperatorID:    operatorID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		PaymentMethod: method,
		TotalCents:    totalCents,
		CreatedAt:     s.now(),
		Items:         items,
	}, movement, receivable)
	if err != nil {
		return domain.SaleView{}, err
	}

	s.checkLowStock(ctx, items)
	s.publish(ctx, events.TopicSaleCompleted, events.SaleCompleted{
		SaleID:        sale.ID,
		OperatorID:    sale.OperatorID,
		SessionID:     sale.SessionID,
		PaymentMethod: sale.PaymentMethod,
		Total:         money.FromCents(sale.TotalCents),
	})
	s.logAudit(ctx, "sale_create", "sales", fmt.Sprintf("sale=%s,method=%s,total=%d,session=%s", sale.ID, method, totalCents, sale.SessionID))

	return saleView(*sale), nil
}

// checkLowStock raises at most one low stock notification per product per
// business day.
func (s *Service) checkLowStock(ctx context.Context, items []domain.SaleItem) {
	since := s.startOfDay()
	for _, item := range items {
		product, err := s.repo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			log.Printf("[notify] WARN: low stock check failed product=%s: %v", item.ProductID, err)
			continue
		}
		if product.Stock > product.MinStock {
			continue
		}
		if _, err := s.repo.FindRecentNotification(ctx, domain.NotifyTypeLowStock, product.ID, since); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[notify] WARN: low stock lookup failed product=%s: %v", product.ID, err)
			continue
		}
		s.notify(ctx, domain.Notification{
			ID:          xid.New("ntf"),
			Type:        domain.NotifyTypeLowStock,
			Title:       "Stock Bajo",
			Message:     fmt.Sprintf("%s tiene solo %d unidades", product.Name, product.Stock),
			Icon:        "package",
			Color:       "orange",
			ReferenceID: product.ID,
		})
	}
}

func (s *Service) GetSale(ctx context.Context, saleID string) (domain.SaleView, error) {
	saleID = strings.TrimSpace(saleID)
	if saleID == "" {
		return domain.SaleView{}, store.ErrInvalidInput
	}
	sale, err := s.repo.GetSaleByID(ctx, saleID)
	if err != nil {
		return domain.SaleView{}, err
	}
	return saleView(*sale), nil
}

func (s *Service) ListSales(ctx context.Context, limit int) ([]domain.SaleView, error) {
	if limit < 1 {
		limit = 50
	}
	sales, err := s.repo.ListSales(ctx, limit)
	if err != nil {
		return nil, err
	}
	views := make([]domain.SaleView, 0, len(sales))
	for _, sale := range sales {
		views = append(views, saleView(sale))
	}
	return views, nil
}
