// Package service holds the business rules for the POS backend. Monetary
// amounts enter as decimals, are converted to integer cents at this boundary,
// and only leave as decimals again inside the view helpers.
package service

import (
	"context"
	"log"
	"strings"
	"time"

	"cajapos/backend/internal/cache"
	"cajapos/backend/internal/domain"
	"cajapos/backend/internal/events"
	"cajapos/backend/internal/money"
	"cajapos/backend/internal/store"
	"cajapos/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Options tune business behavior that varies per deployment.
type Options struct {
	// TZOffsetHours shifts business timestamps from UTC to the store's
	// local wall clock.
	TZOffsetHours int
	// ExpenseAuthCents is the ceiling above which an expense movement
	// needs a manager authorization.
	ExpenseAuthCents int64
	// HistoryLimit caps the register history listing.
	HistoryLimit int
}

type Service struct {
	repo             store.Repository
	counters         cache.CounterCache
	publisher        events.Publisher
	tzOffset         time.Duration
	expenseAuthCents int64
	historyLimit     int
}

func New(repo store.Repository, counters cache.CounterCache, publisher events.Publisher, opts Options) *Service {
	if counters == nil {
		counters = cache.NoopCounterCache{}
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	if opts.ExpenseAuthCents < 1 {
		opts.ExpenseAuthCents = 10000
	}
	if opts.HistoryLimit < 1 {
		opts.HistoryLimit = 50
	}

	return &Service{
		repo:             repo,
		counters:         counters,
		publisher:        publisher,
		tzOffset:         time.Duration(opts.TZOffsetHours) * time.Hour,
		expenseAuthCents: opts.ExpenseAuthCents,
		historyLimit:     opts.HistoryLimit,
	}
}

// now returns the store's local wall clock.
func (s *Service) now() time.Time {
	return time.Now().UTC().Add(s.tzOffset)
}

func (s *Service) startOfDay() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) logAudit(ctx context.Context, action string, module string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		Module:        module,
		Detail:        detail,
		CreatedAt:     s.now(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s module=%s: %v", action, module, err)
	}
}

// notify writes a notification without failing the calling operation.
func (s *Service) notify(ctx context.Context, n domain.Notification) {
	n.CreatedAt = s.now()
	if _, err := s.repo.CreateNotification(ctx, n); err != nil {
		log.Printf("[notify] WARN: failed to create notification type=%s: %v", n.Type, err)
		return
	}
	if err := s.counters.Invalidate(ctx, unreadCounterKey); err != nil {
		log.Printf("[notify] WARN: failed to invalidate unread counter: %v", err)
	}
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if err := s.publisher.Publish(ctx, topic, events.Wrap(payload)); err != nil {
		log.Printf("[events] WARN: failed to publish topic=%s: %v", topic, err)
	}
}

func (s *Service) ListAuditLogs(ctx context.Context, module string, date string, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = s.now().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrInvalidInput
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, module, from, to, limit)
}

func sessionView(session domain.CashSession) domain.SessionView {
	view := domain.SessionView{
		ID:            session.ID,
		OperatorID:    session.OperatorID,
		OpeningAmount: money.FromCents(session.OpeningAmountCents),
		Status:        session.Status,
		Notes:         session.Notes,
		ClosingNotes:  session.ClosingNotes,
		Locked:        session.Locked,
		OpenedAt:      session.OpenedAt,
		ClosedAt:      session.ClosedAt,
	}
	if session.ExpectedCents != nil {
		expected := money.FromCents(*session.ExpectedCents)
		view.ExpectedAmount = &expected
	}
	if session.CountedCents != nil {
		counted := money.FromCents(*session.CountedCents)
		view.CountedAmount = &counted
	}
	if session.DifferenceCents != nil {
		difference := money.FromCents(*session.DifferenceCents)
		view.Difference = &difference
	}
	return view
}

func movementViews(movements []domain.CashMovement) []domain.MovementView {
	views := make([]domain.MovementView, 0, len(movements))
	for _, m := range movements {
		views = append(views, domain.MovementView{
			ID:           m.ID,
			Type:         m.Type,
			Category:     m.Category,
			Amount:       money.FromCents(m.AmountCents),
			Description:  m.Description,
			SaleID:       m.SaleID,
			AuthorizedBy: m.AuthorizedBy,
			CreatedAt:    m.CreatedAt,
		})
	}
	return views
}

func denominationViews(denominations []domain.DenominationCount) []domain.DenominationView {
	views := make([]domain.DenominationView, 0, len(denominations))
	for _, d := range denominations {
		views = append(views, domain.DenominationView{
			Kind:  d.Kind,
			Value: money.FromCents(d.ValueCents),
			Qty:   d.Qty,
			Total: money.FromCents(d.TotalCents),
		})
	}
	return views
}

func productView(product domain.Product) domain.ProductView {
	return domain.ProductView{
		ID:        product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Barcode:   product.Barcode,
		Price:     money.FromCents(product.PriceCents),
		Cost:      money.FromCents(product.CostCents),
		Stock:     product.Stock,
		MinStock:  product.MinStock,
		Active:    product.Active,
		CreatedAt: product.CreatedAt,
	}
}

func saleView(sale domain.Sale) domain.SaleView {
	items := make([]domain.SaleItemView, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, domain.SaleItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Qty:         item.Qty,
			UnitPrice:   money.FromCents(item.UnitPriceCents),
			Subtotal:    money.FromCents(item.SubtotalCents),
		})
	}
	return domain.SaleView{
		ID:            sale.ID,
		OperatorID:    sale.OperatorID,
		CustomerName:  sale.CustomerName,
		PaymentMethod: sale.PaymentMethod,
		Total:         money.FromCents(sale.TotalCents),
		SessionID:     sale.SessionID,
		CreatedAt:     sale.CreatedAt,
		Items:         items,
	}
}

func purchaseView(purchase domain.Purchase) domain.PurchaseView {
	items := make([]domain.PurchaseItemView, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		items = append(items, domain.PurchaseItemView{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			UnitCost:  money.FromCents(item.UnitCostCents),
			Subtotal:  money.FromCents(item.SubtotalCents),
		})
	}
	return domain.PurchaseView{
		ID:           purchase.ID,
		SupplierName: purchase.SupplierName,
		InvoiceRef:   purchase.InvoiceRef,
		Total:        money.FromCents(purchase.TotalCents),
		CreatedAt:    purchase.CreatedAt,
		Items:        items,
	}
}

func accountView(account domain.Account) domain.AccountView {
	return domain.AccountView{
		ID:          account.ID,
		Kind:        account.Kind,
		PartyName:   account.PartyName,
		Description: account.Description,
		Amount:      money.FromCents(account.AmountCents),
		Paid:        money.FromCents(account.PaidCents),
		Remaining:   money.FromCents(account.AmountCents - account.PaidCents),
		Status:      account.Status,
		DueDate:     account.DueDate,
		SaleID:      account.SaleID,
		PurchaseID:  account.PurchaseID,
		CreatedAt:   account.CreatedAt,
	}
}

func parseDueDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return nil, store.ErrInvalidInput
	}
	due := parsed.UTC()
	return &due, nil
}
