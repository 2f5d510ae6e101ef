package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"cajapos/backend/internal/domain"
	"cajapos/backend/internal/store"
	"cajapos/backend/internal/xid"
)

type Store struct {
	mu                     sync.RWMutex
	sessionsByID           map[string]domain.CashSession
	movementsBySession     map[string][]domain.CashMovement
	denominationsBySession map[string][]domain.DenominationCount
	productsByID           map[string]domain.Product
	salesByID              map[string]domain.Sale
	purchasesByID          map[string]domain.Purchase
	accountsByID           map[string]domain.Account
	paymentsByAccount      map[string][]domain.AccountPayment
	notifications          []domain.Notification
	auditLogs              []domain.AuditLog
	usersByUsername        map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cajero123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cajero", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()
	products := []domain.Product{
		{ID: "prd-cuaderno-01", Name: "Cuaderno Universitario 100H", Category: "cuadernos", Barcode: "7591001000011", PriceCents: 350, CostCents: 220, Stock: 48, MinStock: 10, Active: true},
		{ID: "prd-boligrafo-01", Name: "Bolígrafo Azul", Category: "escritura", Barcode: "7591001000028", PriceCents: 80, CostCents: 45, Stock: 200, MinStock: 30, Active: true},
		{ID: "prd-lapiz-01", Name: "Lápiz HB", Category: "escritura", Barcode: "7591001000035", PriceCents: 50, CostCents: 28, Stock: 150, MinStock: 30, Active: true},
		{ID: "prd-resma-01", Name: "Resma Papel Carta", Category: "papel", Barcode: "7591001000042", PriceCents: 650, CostCents: 480, Stock: 35, MinStock: 8, Active: true},
		{ID: "prd-marcador-01", Name: "Marcador Permanente Negro", Category: "escritura", Barcode: "7591001000059", PriceCents: 180, CostCents: 110, Stock: 60, MinStock: 12, Active: true},
		{ID: "prd-carpeta-01", Name: "Carpeta Manila Oficio", Category: "archivo", Barcode: "7591001000066", PriceCents: 40, CostCents: 22, Stock: 300, MinStock: 50, Active: true},
		{ID: "prd-tijeras-01", Name: "Tijeras Escolares", Category: "escolar", Barcode: "7591001000073", PriceCents: 250, CostCents: 150, Stock: 25, MinStock: 6, Active: true},
		{ID: "prd-pegamento-01", Name: "Pegamento en Barra 21g", Category: "escolar", Barcode: "7591001000080", PriceCents: 160, CostCents: 95, Stock: 40, MinStock: 10, Active: true},
	}

	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		p.CreatedAt = now
		p.UpdatedAt = now
		productMap[p.ID] = p
	}

	return &Store{
		sessionsByID:           make(map[string]domain.CashSession),
		movementsBySession:     make(map[string][]domain.CashMovement),
		denominationsBySession: make(map[string][]domain.DenominationCount),
		productsByID:           productMap,
		salesByID:              make(map[string]domain.Sale),
		purchasesByID:          make(map[string]domain.Purchase),
		accountsByID:           make(map[string]domain.Account),
		paymentsByAccount:      make(map[string][]domain.AccountPayment),
		notifications:          make([]domain.Notification, 0, 64),
		auditLogs:              make([]domain.AuditLog, 0, 128),
		usersByUsername:        seedUsers(),
	}
}

func (s *Store) CreateSession(_ context.Context, session domain.CashSession) (*domain.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(session.OperatorID) == "" || session.OpeningAmountCents < 0 {
		return nil, store.ErrInvalidInput
	}
	for _, existing := range s.sessionsByID {
		if existing.OperatorID == session.OperatorID && existing.Status == domain.SessionStatusOpen {
			return nil, store.ErrRegisterOpen
		}
	}

	if session.ID == "" {
		session.ID = xid.New("reg")
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now().UTC()
	}
	session.Status = domain.SessionStatusOpen
	session.Locked = false
	session.ExpectedCents = nil
	session.CountedCents = nil
	session.DifferenceCents = nil
	session.ClosedAt = nil

	s.sessionsByID[session.ID] = session
	saved := session
	return &saved, nil
}

func (s *Store) GetSessionByID(_ context.Context, id string) (*domain.CashSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessionsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copySession := session
	return &copySession, nil
}

func (s *Store) GetActiveSessionByOperator(_ context.Context, operatorID string) (*domain.CashSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.CashSession
	for _, session := range s.sessionsByID {
		if session.OperatorID != operatorID || session.Status != domain.SessionStatusOpen {
			continue
		}
		if latest == nil || session.OpenedAt.After(latest.OpenedAt) {
			copySession := session
			latest = &copySession
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	return latest, nil
}

func (s *Store) CountOpenSessionsByOperator(_ context.Context, operatorID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, session := range s.sessionsByID {
		if session.OperatorID == operatorID && session.Status == domain.SessionStatusOpen {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListSessions(_ context.Context, limit int) ([]domain.CashSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 50
	}

	sessions := make([]domain.CashSession, 0, len(s.sessionsByID))
	for _, session := range s.sessionsByID {
		sessions = append(sessions, session)
	}
	slices.SortFunc(sessions, func(a, b domain.CashSession) int {
		return b.OpenedAt.Compare(a.OpenedAt)
	})
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (s *Store) CloseSession(_ context.Context, sessionID string, close store.SessionClose) (*domain.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessionsByID[sessionID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if session.Status != domain.SessionStatusOpen || session.Locked {
		return nil, store.ErrRegisterNotOpen
	}

	closedAt := close.ClosedAt
	if closedAt.IsZero() {
		closedAt = time.Now().UTC()
	}

	expected := close.ExpectedCents
	counted := close.CountedCents
	difference := close.DifferenceCents
	session.Status = domain.SessionStatusClosed
	session.Locked = true
	session.ExpectedCents = &expected
	session.CountedCents = &counted
	session.DifferenceCents = &difference
	session.ClosingNotes = close.ClosingNotes
	session.ClosedAt = &closedAt
	s.sessionsByID[sessionID] = session

	denominations := make([]domain.DenominationCount, 0, len(close.Denominations))
	for _, d := range close.Denominations {
		d.SessionID = sessionID
		denominations = append(denominations, d)
	}
	s.denominationsBySession[sessionID] = denominations

	saved := session
	return &saved, nil
}

func (s *Store) AppendMovement(_ context.Context, movement domain.CashMovement) (*domain.CashMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendMovementLocked(movement)
}

func (s *Store) appendMovementLocked(movement domain.CashMovement) (*domain.CashMovement, error) {
	session, exists := s.sessionsByID[movement.SessionID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if session.Status != domain.SessionStatusOpen || session.Locked {
		return nil, store.ErrRegisterNotOpen
	}
	if movement.AmountCents < 1 || movement.Type == "" {
		return nil, store.ErrInvalidInput
	}

	if movement.ID == "" {
		movement.ID = xid.New("mov")
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}

	s.movementsBySession[movement.SessionID] = append(s.movementsBySession[movement.SessionID], movement)
	saved := movement
	return &saved, nil
}

func (s *Store) ListMovementsBySession(_ context.Context, sessionID string) ([]domain.CashMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	movements := s.movementsBySession[sessionID]
	result := make([]domain.CashMovement, len(movements))
	copy(result, movements)
	return result, nil
}

func (s *Store) ListDenominationsBySession(_ context.Context, sessionID string) ([]domain.DenominationCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	denominations := s.denominationsBySession[sessionID]
	result := make([]domain.DenominationCount, len(denominations))
	copy(result, denominations)
	return result, nil
}

func (s *Store) ListProducts(_ context.Context, includeInactive bool) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.productsByID))
	for _, p := range s.productsByID {
		if !p.Active && !includeInactive {
			continue
		}
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(a.Category, b.Category)
	})
	return products, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.Category == "" || product.PriceCents < 1 || product.Stock < 0 {
		return nil, store.ErrInvalidInput
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if _, exists := s.productsByID[product.ID]; exists {
		return nil, store.ErrInvalidInput
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	product.Active = true

	s.productsByID[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.productsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" || product.Name == "" || product.Category == "" || product.PriceCents < 1 {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.productsByID[product.ID]; !exists {
		return nil, store.ErrNotFound
	}
	product.UpdatedAt = time.Now().UTC()
	s.productsByID[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale, movement *domain.CashMovement, receivable *domain.Account) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sale.Items) == 0 || sale.TotalCents < 1 {
		return nil, store.ErrInvalidInput
	}

	// All checks run before any mutation so an error leaves no partial state.
	for _, item := range sale.Items {
		product, exists := s.productsByID[item.ProductID]
		if !exists || !product.Active {
			return nil, store.ErrNotFound
		}
		if product.Stock < item.Qty {
			return nil, store.ErrInsufficientStock
		}
	}
	if movement != nil {
		session, exists := s.sessionsByID[movement.SessionID]
		if !exists {
			return nil, store.ErrNotFound
		}
		if session.Status != domain.SessionStatusOpen || session.Locked {
			return nil, store.ErrRegisterNotOpen
		}
		if movement.AmountCents < 1 || movement.Type == "" {
			return nil, store.ErrInvalidInput
		}
	}

	for _, item := range sale.Items {
		product := s.productsByID[item.ProductID]
		product.Stock -= item.Qty
		product.UpdatedAt = time.Now().UTC()
		s.productsByID[item.ProductID] = product
	}

	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	if movement != nil {
		movement.SaleID = sale.ID
		if _, err := s.appendMovementLocked(*movement); err != nil {
			return nil, err
		}
		sale.SessionID = movement.SessionID
	}

	if receivable != nil {
		account := *receivable
		if account.ID == "" {
			account.ID = xid.New("acct")
		}
		account.SaleID = sale.ID
		account.Kind = domain.AccountKindReceivable
		account.Status = domain.AccountStatusPending
		if account.CreatedAt.IsZero() {
			account.CreatedAt = time.Now().UTC()
		}
		s.accountsByID[account.ID] = account
	}

	s.salesByID[sale.ID] = sale
	saved := sale
	return &saved, nil
}

func (s *Store) GetSaleByID(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.salesByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copySale := sale
	return &copySale, nil
}

func (s *Store) ListSales(_ context.Context, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 50
	}
	sales := make([]domain.Sale, 0, len(s.salesByID))
	for _, sale := range s.salesByID {
		sales = append(sales, sale)
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (s *Store) CreatePurchase(_ context.Context, purchase domain.Purchase, newPriceCents map[string]int64, payable *domain.Account) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(purchase.Items) == 0 || purchase.TotalCents < 1 {
		return nil, store.ErrInvalidInput
	}
	for _, item := range purchase.Items {
		if _, exists := s.productsByID[item.ProductID]; !exists {
			return nil, store.ErrNotFound
		}
	}

	if purchase.ID == "" {
		purchase.ID = xid.New("pur")
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}

	for _, item := range purchase.Items {
		product := s.productsByID[item.ProductID]
		product.Stock += item.Qty
		product.CostCents = item.UnitCostCents
		if price, ok := newPriceCents[item.ProductID]; ok && price > 0 {
			product.PriceCents = price
		}
		product.UpdatedAt = time.Now().UTC()
		s.productsByID[item.ProductID] = product
	}

	if payable != nil {
		account := *payable
		if account.ID == "" {
			account.ID = xid.New("acct")
		}
		account.PurchaseID = purchase.ID
		account.Kind = domain.AccountKindPayable
		account.Status = domain.AccountStatusPending
		if account.CreatedAt.IsZero() {
			account.CreatedAt = time.Now().UTC()
		}
		s.accountsByID[account.ID] = account
	}

	s.purchasesByID[purchase.ID] = purchase
	saved := purchase
	return &saved, nil
}

func (s *Store) ListPurchases(_ context.Context, limit int) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 50
	}
	purchases := make([]domain.Purchase, 0, len(s.purchasesByID))
	for _, purchase := range s.purchasesByID {
		purchases = append(purchases, purchase)
	}
	slices.SortFunc(purchases, func(a, b domain.Purchase) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(purchases) > limit {
		purchases = purchases[:limit]
	}
	return purchases, nil
}

func (s *Store) CreateAccount(_ context.Context, account domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account.PartyName == "" || account.AmountCents < 1 {
		return nil, store.ErrInvalidInput
	}
	if account.Kind != domain.AccountKindReceivable && account.Kind != domain.AccountKindPayable {
		return nil, store.ErrInvalidInput
	}
	if account.ID == "" {
		account.ID = xid.New("acct")
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	account.Status = domain.AccountStatusPending
	account.PaidCents = 0

	s.accountsByID[account.ID] = account
	saved := account
	return &saved, nil
}

func (s *Store) GetAccountByID(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.accountsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyAccount := account
	return &copyAccount, nil
}

func (s *Store) ListAccounts(_ context.Context, kind string, status string, limit int) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	accounts := make([]domain.Account, 0, len(s.accountsByID))
	for _, account := range s.accountsByID {
		if kind != "" && account.Kind != kind {
			continue
		}
		if status != "" && account.Status != status {
			continue
		}
		accounts = append(accounts, account)
	}
	slices.SortFunc(accounts, func(a, b domain.Account) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(accounts) > limit {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

func (s *Store) AddAccountPayment(_ context.Context, payment domain.AccountPayment) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accountsByID[payment.AccountID]
	if !exists {
		return nil, store.ErrNotFound
	}
	remaining := account.AmountCents - account.PaidCents
	if payment.AmountCents < 1 || payment.AmountCents > remaining {
		return nil, store.ErrInvalidInput
	}

	if payment.ID == "" {
		payment.ID = xid.New("pay")
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	account.PaidCents += payment.AmountCents
	if account.PaidCents >= account.AmountCents {
		account.Status = domain.AccountStatusPaid
	} else {
		account.Status = domain.AccountStatusPartial
	}
	s.accountsByID[account.ID] = account
	s.paymentsByAccount[account.ID] = append(s.paymentsByAccount[account.ID], payment)

	saved := account
	return &saved, nil
}

func (s *Store) ListAccountPayments(_ context.Context, accountID string) ([]domain.AccountPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := s.paymentsByAccount[accountID]
	result := make([]domain.AccountPayment, len(payments))
	copy(result, payments)
	return result, nil
}

func (s *Store) ListAccountsDueBy(_ context.Context, by time.Time) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := make([]domain.Account, 0, 8)
	for _, account := range s.accountsByID {
		if account.Status == domain.AccountStatusPaid || account.DueDate == nil {
			continue
		}
		if !account.DueDate.After(by) {
			due = append(due, account)
		}
	}
	slices.SortFunc(due, func(a, b domain.Account) int {
		return a.DueDate.Compare(*b.DueDate)
	})
	return due, nil
}

func (s *Store) CreateNotification(_ context.Context, notification domain.Notification) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.Title == "" || notification.Type == "" {
		return nil, store.ErrInvalidInput
	}
	if notification.ID == "" {
		notification.ID = xid.New("ntf")
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	s.notifications = append(s.notifications, notification)
	saved := notification
	return &saved, nil
}

func (s *Store) ListNotifications(_ context.Context, filter string, limit int, offset int) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	matched := make([]domain.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		switch filter {
		case "unread":
			if n.Read {
				continue
			}
		case "read":
			if !n.Read {
				continue
			}
		}
		matched = append(matched, n)
	}
	slices.SortFunc(matched, func(a, b domain.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if offset >= len(matched) {
		return []domain.Notification{}, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) MarkAllNotificationsRead(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for i := range s.notifications {
		if !s.notifications[i].Read {
			s.notifications[i].Read = true
			updated++
		}
	}
	return updated, nil
}

func (s *Store) CountUnreadNotifications(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, n := range s.notifications {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *Store) FindRecentNotification(_ context.Context, notifyType string, referenceID string, since time.Time) (*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications {
		if n.Type == notifyType && n.ReferenceID == referenceID && n.CreatedAt.After(since) {
			found := n
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) DeleteReadNotificationsBefore(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]domain.Notification, 0, len(s.notifications))
	deleted := 0
	for _, n := range s.notifications {
		if n.Read && n.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	return deleted, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, module string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	logs := make([]domain.AuditLog, 0, limit)
	for _, entry := range s.auditLogs {
		if module != "" && entry.Module != module {
			continue
		}
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		logs = append(logs, entry)
	}
	slices.SortFunc(logs, func(a, b domain.AuditLog) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidInput
	}
	user.Username = username
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}
