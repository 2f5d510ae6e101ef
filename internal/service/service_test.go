package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"cajapos/backend/internal/cache"
	"cajapos/backend/internal/domain"
	"cajapos/backend/internal/events"
	"cajapos/backend/internal/money"
	"cajapos/backend/internal/store"
	"cajapos/backend/internal/store/memory"
)

func newTestService() *Service {
	repo := memory.NewSeeded()
	return New(repo, cache.NoopCounterCache{}, events.Noop{}, Options{})
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
}

func cashierCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "cajero", Role: "cashier"})
}

func openRegister(t *testing.T, svc *Service, ctx context.Context, opening string) domain.SessionOpenResponse {
	t.Helper()
	resp, err := svc.OpenSession(ctx, domain.SessionOpenRequest{
		OpeningAmount: dec(opening),
	})
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}
	return resp
}

func TestSessionFullLifecycleBalances(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	opened := openRegister(t, svc, ctx, "100.00")

	_, err := svc.RecordMovement(ctx, domain.MovementRequest{
		SessionID:   opened.ID,
		Type:        "income",
		Category:    "deposito",
		Amount:      dec("50.00"),
		Description: "fondo adicional",
	})
	if err != nil {
		t.Fatalf("income movement failed: %v", err)
	}

	_, err = svc.RecordMovement(ctx, domain.MovementRequest{
		SessionID:   opened.ID,
		Type:        "expense",
		Category:    "servicios",
		Amount:      dec("20.00"),
		Description: "pago de agua",
	})
	if err != nil {
		t.Fatalf("expense movement failed: %v", err)
	}

	closed, err := svc.CloseSession(ctx, domain.SessionCloseRequest{
		SessionID: opened.ID,
		Denominations: []domain.DenominationEntry{
			{Kind: "bill", Value: dec("100.00"), Qty: 1},
			{Kind: "bill", Value: dec("20.00"), Qty: 1},
			{Kind: "bill", Value: dec("10.00"), Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("close session failed: %v", err)
	}

	if !closed.ExpectedAmount.Equal(dec("130.00")) {
		t.Fatalf("expected amount 130.00, got %s", closed.ExpectedAmount)
	}
	if !closed.CountedAmount.Equal(dec("130.00")) {
		t.Fatalf("counted amount 130.00, got %s", closed.CountedAmount)
	}
	if !closed.Difference.IsZero() {
		t.Fatalf("expected zero difference, got %s", closed.Difference)
	}
}

func TestSessionCloseReportsShortage(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	opened := openRegister(t, svc, ctx, "100.00")

	_, err := svc.RecordMovement(ctx, domain.MovementRequest{
		SessionID: opened.ID,
		Type:      "income",
		Amount:    dec("50.00"),
	})
	if err != nil {
		t.Fatalf("income movement failed: %v", err)
	}
	_, err = svc.RecordMovement(ctx, domain.MovementRequest{
		SessionID: opened.ID,
		Type:      "expense",
		Amount:    dec("20.00"),
	})
	if err != nil {
		t.Fatalf("expense movement failed: %v", err)
	}

	closed, err := svc.CloseSession(ctx, domain.SessionCloseRequest{
		SessionID: opened.ID,
		Denominations: []domain.DenominationEntry{
			{Kind: "bill", Value: dec("100.00"), Qty: 1},
			{Kind: "bill", Value: dec("20.00"), Qty: 1},
			{Kind: "coin", Value: dec("5.00"), Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("close session failed: %v", err)
	}

	if !closed.CountedAmount.Equal(dec("125.00")) {
		t.Fatalf("counted amount 125.00, got %s", closed.CountedAmount)
	}
	if !closed.Difference.Equal(dec("-5.00")) {
		t.Fatalf("expected difference -5.00, got %s", closed.Difference)
	}
}

func TestSecondOpenForSameOperatorRejected(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	openRegister(t, svc, ctx, "100.00")

	_, err := svc.OpenSession(ctx, domain.SessionOpenRequest{OpeningAmount: dec("50.00")})
	if !errors.Is(err, store.ErrRegisterOpen) {
		t.Fatalf("expected ErrRegisterOpen, got %v", err)
	}
}

func TestMovementAfterCloseRejected(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	opened := openRegister(t, svc, ctx, "100.00")
	_, err := svc.CloseSession(ctx, domain.SessionCloseRequest{
		SessionID: opened.ID,
		Denominations: []domain.DenominationEntry{
			{Kind: "bill", Value: dec("100.00"), Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("close session failed: %v", err)
	}

	_, err = svc.RecordMovement(ctx, domain.MovementRequest{
		SessionID: opened.ID,
		Type:      "income",
		Amount:    dec("10.00"),
	})
	if !errors.Is(err, store.ErrRegisterNotOpen) {
		t.Fatalf("expected ErrRegisterNotOpen, got %v", err)
	}
}

func TestDoubleCloseRejected(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	opened := openRegister(t, svc, ctx, "80.00")
	req := domain.SessionCloseRequest{
		SessionID: opened.ID,
		Denominations: []domain.DenominationEntry{
			{Kind: "bill", Value: dec("80.00"), Qty: 1},
		},
	}
	if _, err := svc.CloseSession(ctx, req); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if _, err := svc.CloseSession(ctx, req); !errors.Is(err, store.ErrRegisterNotOpen) {
		t.Fatalf("expected ErrRegisterNotOpen on second close, got %v", err)
	}
}

func TestRecordMovementRejectsSaleType(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	opened := openRegister(t, svc, ctx, "100.00")
	_, err := svc.RecordMovement(ctx, domain.MovementRequest{
		SessionID: opened.ID,
		Type:      "sale",
		Amount:    dec("15.00"),
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for sale type, got %v", err)
	}
}

func TestLargeExpenseRequiresAuthorization(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	opened := openRegister(t, svc, ctx, "500.00")

	_, err := svc.RecordMovement(ctx, domain.MovementRequest{
		SessionID: opened.ID,
		Type:      "expense",
		Amount:    dec("150.00"),
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unauthorized large expense, got %v", err)
	}

	mv, err := svc.RecordMovement(ctx, domain.MovementRequest{
		SessionID:    opened.ID,
		Type:         "expense",
		Amount:       dec("150.00"),
		AuthorizedBy: "manager",
	})
	if err != nil {
		t.Fatalf("authorized large expense failed: %v", err)
	}
	if mv.AuthorizedBy != "manager" {
		t.Fatalf("expected authorized_by manager, got %q", mv.AuthorizedBy)
	}
}

func TestReconcileIsDeterministic(t *testing.T) {
	movements := []domain.CashMovement{
		{Type: "sale", AmountCents: 1250},
		{Type: "income", AmountCents: 5000},
		{Type: "expense", AmountCents: 2000},
		{Type: "sale", AmountCents: 350},
	}
	denominations := []domain.DenominationCount{
		{Kind: "bill", ValueCents: 10000, Qty: 1, TotalCents: 10000},
		{Kind: "coin", ValueCents: 100, Qty: 46, TotalCents: 4600},
	}

	expected, counted, difference := reconcile(10000, movements, denominations)
	if expected != 10000+1250+5000-2000+350 {
		t.Fatalf("unexpected expected cents: %d", expected)
	}
	if counted != 14600 {
		t.Fatalf("unexpected counted cents: %d", counted)
	}
	if difference != counted-expected {
		t.Fatalf("difference must equal counted minus expected, got %d", difference)
	}

	for i := 0; i < 5; i++ {
		e, c, d := reconcile(10000, movements, denominations)
		if e != expected || c != counted || d != difference {
			t.Fatalf("reconcile changed across runs: %d/%d/%d vs %d/%d/%d", e, c, d, expected, counted, difference)
		}
	}
}

func TestCashSalePostsDrawerMovement(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	opened := openRegister(t, svc, ctx, "100.00")

	sale, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		PaymentMethod: "cash",
		Items: []domain.SaleLineRequest{
			{ProductID: "prd-cuaderno-01", Qty: 2},
		},
	})
	if err != nil {
		t.Fatalf("cash sale failed: %v", err)
	}
	if sale.SessionID != opened.ID {
		t.Fatalf("expected sale linked to session %s, got %s", opened.ID, sale.SessionID)
	}
	if !sale.Total.Equal(dec("7.00")) {
		t.Fatalf("expected total 7.00, got %s", sale.Total)
	}

	active, err := svc.ActiveSession(ctx, "cajero")
	if err != nil {
		t.Fatalf("active session failed: %v", err)
	}
	if !active.HasActiveRegister {
		t.Fatalf("expected active register")
	}
	foundSale := false
	for _, m := range active.Movements {
		if m.Type == "sale" && m.SaleID == sale.ID {
			foundSale = true
			if !m.Amount.Equal(sale.Total) {
				t.Fatalf("movement amount %s does not match sale total %s", m.Amount, sale.Total)
			}
		}
	}
	if !foundSale {
		t.Fatalf("expected a sale movement in the open session")
	}
	if !active.Totals.Sales.Equal(sale.Total) {
		t.Fatalf("expected session sales total %s, got %s", sale.Total, active.Totals.Sales)
	}
}

func TestCashSaleWithoutSessionStillCompletes(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	sale, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		PaymentMethod: "cash",
		Items: []domain.SaleLineRequest{
			{ProductID: "prd-lapiz-01", Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("sale without session failed: %v", err)
	}
	if sale.SessionID != "" {
		t.Fatalf("expected no session link, got %s", sale.SessionID)
	}
}

func TestCreditSaleCreatesReceivable(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	_, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		PaymentMethod: "credit",
		Items: []domain.SaleLineRequest{
			{ProductID: "prd-resma-01", Qty: 1},
		},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without customer name, got %v", err)
	}

	sale, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		PaymentMethod: "credit",
		CustomerName:  "Colegio San Martín",
		Items: []domain.SaleLineRequest{
			{ProductID: "prd-resma-01", Qty: 2},
		},
	})
	if err != nil {
		t.Fatalf("credit sale failed: %v", err)
	}

	accounts, err := svc.ListAccounts(ctx, "receivable", "pending", 10)
	if err != nil {
		t.Fatalf("list accounts failed: %v", err)
	}
	found := false
	for _, acct := range accounts {
		if acct.SaleID == sale.ID {
			found = true
			if !acct.Amount.Equal(sale.Total) {
				t.Fatalf("receivable amount %s does not match sale total %s", acct.Amount, sale.Total)
			}
			if acct.PartyName != "Colegio San Martín" {
				t.Fatalf("unexpected party name %q", acct.PartyName)
			}
		}
	}
	if !found {
		t.Fatalf("expected a receivable for the credit sale")
	}
}

func TestSaleRejectsInsufficientStock(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	_, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		PaymentMethod: "cash",
		Items: []domain.SaleLineRequest{
			{ProductID: "prd-tijeras-01", Qty: 9999},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestAccountPaymentTransitions(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	account, err := svc.CreateAccount(ctx, domain.AccountCreateRequest{
		Kind:      "payable",
		PartyName: "Distribuidora Andina",
		Amount:    dec("200.00"),
	})
	if err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	if account.Status != domain.AccountStatusPending {
		t.Fatalf("expected pending status, got %s", account.Status)
	}

	partial, err := svc.RecordPayment(ctx, account.ID, domain.AccountPaymentRequest{
		Amount: dec("80.00"),
		Method: "cash",
	})
	if err != nil {
		t.Fatalf("partial payment failed: %v", err)
	}
	if partial.Status != domain.AccountStatusPartial {
		t.Fatalf("expected partial status, got %s", partial.Status)
	}
	if !partial.Remaining.Equal(dec("120.00")) {
		t.Fatalf("expected remaining 120.00, got %s", partial.Remaining)
	}

	_, err = svc.RecordPayment(ctx, account.ID, domain.AccountPaymentRequest{
		Amount: dec("500.00"),
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected overpayment rejection, got %v", err)
	}

	paid, err := svc.RecordPayment(ctx, account.ID, domain.AccountPaymentRequest{
		Amount: dec("120.00"),
	})
	if err != nil {
		t.Fatalf("final payment failed: %v", err)
	}
	if paid.Status != domain.AccountStatusPaid {
		t.Fatalf("expected paid status, got %s", paid.Status)
	}
	if !paid.Remaining.IsZero() {
		t.Fatalf("expected zero remaining, got %s", paid.Remaining)
	}
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateProduct(cashierCtx(), domain.ProductCreateRequest{
		Name:     "Regla 30cm",
		Category: "escolar",
		Price:    dec("1.20"),
		Cost:     dec("0.70"),
		Stock:    20,
		MinStock: 5,
	})
	if err == nil {
		t.Fatalf("expected non-admin create product to fail")
	}

	product, err := svc.CreateProduct(adminCtx(), domain.ProductCreateRequest{
		Name:     "Regla 30cm",
		Category: "Escolar",
		Price:    dec("1.20"),
		Cost:     dec("0.70"),
		Stock:    20,
		MinStock: 5,
	})
	if err != nil {
		t.Fatalf("admin create product failed: %v", err)
	}
	if product.Category != "escolar" {
		t.Fatalf("expected lowercased category, got %q", product.Category)
	}
	if !product.Price.Equal(dec("1.20")) {
		t.Fatalf("expected price 1.20, got %s", product.Price)
	}
}

func TestPurchaseRestocksAndUpdatesPrice(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	before, err := svc.GetProduct(ctx, "prd-boligrafo-01")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}

	purchase, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		SupplierName: "Papelera Central",
		InvoiceRef:   "FAC-0091",
		Items: []domain.PurchaseLineRequest{
			{ProductID: "prd-boligrafo-01", Qty: 100, UnitCost: dec("0.50"), MarginPct: 60},
		},
	})
	if err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}
	if !purchase.Total.Equal(dec("50.00")) {
		t.Fatalf("expected purchase total 50.00, got %s", purchase.Total)
	}

	after, err := svc.GetProduct(ctx, "prd-boligrafo-01")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if after.Stock != before.Stock+100 {
		t.Fatalf("expected stock %d, got %d", before.Stock+100, after.Stock)
	}
	if !after.Cost.Equal(dec("0.50")) {
		t.Fatalf("expected cost 0.50, got %s", after.Cost)
	}
	if !after.Price.Equal(dec("0.80")) {
		t.Fatalf("expected price 0.80 (cost plus margin), got %s", after.Price)
	}
}

func TestLowStockNotificationDedupedPerDay(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	openRegister(t, svc, ctx, "100.00")

	// prd-tijeras-01 starts at 25 with min stock 6. The first sale drops it to
	// 5 and notifies; the second drops it to 4 but stays silent today.
	for i, qty := range []int{20, 1} {
		_, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
			PaymentMethod: "cash",
			Items: []domain.SaleLineRequest{
				{ProductID: "prd-tijeras-01", Qty: qty},
			},
		})
		if err != nil {
			t.Fatalf("sale #%d failed: %v", i, err)
		}
	}

	notifications, err := svc.ListNotifications(ctx, "all", 100, 0)
	if err != nil {
		t.Fatalf("list notifications failed: %v", err)
	}
	lowStock := 0
	for _, n := range notifications {
		if n.Type == domain.NotifyTypeLowStock && n.ReferenceID == "prd-tijeras-01" {
			lowStock++
		}
	}
	if lowStock != 1 {
		t.Fatalf("expected exactly 1 low stock notification, got %d", lowStock)
	}
}

func TestUnreadCountAndMarkAll(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	openRegister(t, svc, ctx, "100.00")

	count, err := svc.UnreadCount(ctx)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count < 1 {
		t.Fatalf("expected at least one unread notification, got %d", count)
	}

	updated, err := svc.MarkAllNotificationsRead(ctx)
	if err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	if int64(updated) != count {
		t.Fatalf("expected %d updated, got %d", count, updated)
	}

	count, err = svc.UnreadCount(ctx)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero unread after mark all, got %d", count)
	}
}

// closingRaceRepo reports one open session but fails the follow-up fetch, as
// when another request closes the session between the two store calls.
type closingRaceRepo struct {
	store.Repository
}

func (r closingRaceRepo) CountOpenSessionsByOperator(_ context.Context, _ string) (int, error) {
	return 1, nil
}

func (r closingRaceRepo) GetActiveSessionByOperator(_ context.Context, _ string) (*domain.CashSession, error) {
	return nil, store.ErrNotFound
}

func TestActiveSessionTreatsConcurrentCloseAsInactive(t *testing.T) {
	repo := closingRaceRepo{Repository: memory.NewSeeded()}
	svc := New(repo, cache.NoopCounterCache{}, events.Noop{}, Options{})

	resp, err := svc.ActiveSession(context.Background(), "cajero")
	if err != nil {
		t.Fatalf("active session failed: %v", err)
	}
	if resp.HasActiveRegister {
		t.Fatalf("expected inactive register when the session vanished mid-lookup")
	}
}

func TestMoneyRoundTripAtBoundary(t *testing.T) {
	opened := money.ToCents(dec("123.45"))
	if opened != 12345 {
		t.Fatalf("expected 12345 cents, got %d", opened)
	}
	if !money.FromCents(opened).Equal(dec("123.45")) {
		t.Fatalf("expected 123.45 back, got %s", money.FromCents(opened))
	}
}
