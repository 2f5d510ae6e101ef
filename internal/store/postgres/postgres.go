// Package postgres implements store.Repository on PostgreSQL through
// database/sql with the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"cajapos/backend/internal/domain"
	"cajapos/backend/internal/store"
	"cajapos/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS cash_sessions (
			id TEXT PRIMARY KEY,
			operator_id TEXT NOT NULL,
			opening_amount_cents BIGINT NOT NULL CHECK (opening_amount_cents >= 0),
			expected_cents BIGINT,
			counted_cents BIGINT,
			difference_cents BIGINT,
			status TEXT NOT NULL CHECK (status IN ('open', 'closed')),
			notes TEXT NOT NULL DEFAULT '',
			closing_notes TEXT NOT NULL DEFAULT '',
			locked BOOLEAN NOT NULL DEFAULT FALSE,
			opened_at TIMESTAMPTZ NOT NULL,
			closed_at TIMESTAMPTZ
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_cash_sessions_operator_open
			ON cash_sessions (operator_id) WHERE status = 'open'`,
		`CREATE TABLE IF NOT EXISTS cash_movements (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES cash_sessions(id),
			type TEXT NOT NULL CHECK (type IN ('sale', 'income', 'expense')),
			category TEXT NOT NULL DEFAULT '',
			amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
			description TEXT NOT NULL DEFAULT '',
			sale_id TEXT,
			authorized_by TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cash_movements_session
			ON cash_movements (session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS cash_denominations (
			session_id TEXT NOT NULL REFERENCES cash_sessions(id),
			kind TEXT NOT NULL CHECK (kind IN ('bill', 'coin')),
			value_cents BIGINT NOT NULL CHECK (value_cents > 0),
			qty INT NOT NULL CHECK (qty >= 0),
			total_cents BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			barcode TEXT,
			price_cents BIGINT NOT NULL CHECK (price_cents > 0),
			cost_cents BIGINT NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0,
			min_stock INT NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY,
			operator_id TEXT NOT NULL,
			customer_name TEXT,
			payment_method TEXT NOT NULL,
			total_cents BIGINT NOT NULL CHECK (total_cents > 0),
			session_id TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sale_items (
			sale_id TEXT NOT NULL REFERENCES sales(id),
			product_id TEXT NOT NULL REFERENCES products(id),
			product_name TEXT NOT NULL,
			qty INT NOT NULL CHECK (qty > 0),
			unit_price_cents BIGINT NOT NULL,
			subtotal_cents BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id TEXT PRIMARY KEY,
			supplier_name TEXT NOT NULL,
			invoice_ref TEXT,
			total_cents BIGINT NOT NULL CHECK (total_cents > 0),
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS purchase_items (
			purchase_id TEXT NOT NULL REFERENCES purchases(id),
			product_id TEXT NOT NULL REFERENCES products(id),
			qty INT NOT NULL CHECK (qty > 0),
			unit_cost_cents BIGINT NOT NULL,
			subtotal_cents BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK (kind IN ('receivable', 'payable')),
			party_name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
			paid_cents BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK (status IN ('pending', 'partial', 'paid')),
			due_date TIMESTAMPTZ,
			sale_id TEXT,
			purchase_id TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS account_payments (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id),
			amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
			method TEXT,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			icon TEXT,
			color TEXT,
			reference_id TEXT,
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			actor_username TEXT NOT NULL,
			actor_role TEXT NOT NULL,
			action TEXT NOT NULL,
			module TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullIfEmpty(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

const sessionColumns = `id, operator_id, opening_amount_cents, expected_cents, counted_cents,
	difference_cents, status, notes, closing_notes, locked, opened_at, closed_at`

func scanSession(row interface{ Scan(...any) error }) (*domain.CashSession, error) {
	var (
		session      domain.CashSession
		notes        sql.NullString
		closingNotes sql.NullString
		closedAt     sql.NullTime
	)
	err := row.Scan(
		&session.ID, &session.OperatorID, &session.OpeningAmountCents,
		&session.ExpectedCents, &session.CountedCents, &session.DifferenceCents,
		&session.Status, &notes, &closingNotes, &session.Locked,
		&session.OpenedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}
	session.Notes = notes.String
	session.ClosingNotes = closingNotes.String
	if closedAt.Valid {
		t := closedAt.Time
		session.ClosedAt = &t
	}
	return &session, nil
}

func (s *Store) CreateSession(ctx context.Context, session domain.CashSession) (*domain.CashSession, error) {
	if strings.TrimSpace(session.OperatorID) == "" || session.OpeningAmountCents < 0 {
		return nil, store.ErrInvalidInput
	}
	if session.ID == "" {
		session.ID = xid.New("reg")
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now().UTC()
	}
	session.Status = domain.SessionStatusOpen
	session.Locked = false

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cash_sessions (id, operator_id, opening_amount_cents, status, notes, locked, opened_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
		session.ID, session.OperatorID, session.OpeningAmountCents,
		session.Status, session.Notes, session.OpenedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrRegisterOpen
		}
		return nil, fmt.Errorf("insert cash session: %w", err)
	}
	return &session, nil
}

func (s *Store) GetSessionByID(ctx context.Context, id string) (*domain.CashSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM cash_sessions WHERE id = $1`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cash session: %w", err)
	}
	return session, nil
}

func (s *Store) GetActiveSessionByOperator(ctx context.Context, operatorID string) (*domain.CashSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM cash_sessions
		WHERE operator_id = $1 AND status = 'open'
		ORDER BY opened_at DESC
		LIMIT 1`, operatorID)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

func (s *Store) CountOpenSessionsByOperator(ctx context.Context, operatorID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cash_sessions WHERE operator_id = $1 AND status = 'open'`,
		operatorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open sessions: %w", err)
	}
	return count, nil
}

func (s *Store) ListSessions(ctx context.Context, limit int) ([]domain.CashSession, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM cash_sessions
		ORDER BY opened_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list cash sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]domain.CashSession, 0, limit)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

func (s *Store) CloseSession(ctx context.Context, sessionID string, close store.SessionClose) (*domain.CashSession, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin close tx: %w", err)
	}
	defer tx.Rollback()

	closedAt := close.ClosedAt
	if closedAt.IsZero() {
		closedAt = time.Now().UTC()
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE cash_sessions
		SET status = 'closed',
			locked = TRUE,
			expected_cents = $2,
			counted_cents = $3,
			difference_cents = $4,
			closing_notes = $5,
			closed_at = $6
		WHERE id = $1 AND status = 'open' AND NOT locked
		RETURNING `+sessionColumns,
		sessionID, close.ExpectedCents, close.CountedCents,
		close.DifferenceCents, close.ClosingNotes, closedAt,
	)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM cash_sessions WHERE id = $1)`, sessionID,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check session exists: %w", err)
		}
		if !exists {
			return nil, store.ErrNotFound
		}
		return nil, store.ErrRegisterNotOpen
	}
	if err != nil {
		return nil, fmt.Errorf("close cash session: %w", err)
	}

	for _, d := range close.Denominations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cash_denominations (session_id, kind, value_cents, qty, total_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			sessionID, d.Kind, d.ValueCents, d.Qty, d.TotalCents,
		); err != nil {
			return nil, fmt.Errorf("insert denomination: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit close tx: %w", err)
	}
	return session, nil
}

func (s *Store) AppendMovement(ctx context.Context, movement domain.CashMovement) (*domain.CashMovement, error) {
	if movement.AmountCents < 1 || movement.Type == "" {
		return nil, store.ErrInvalidInput
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin movement tx: %w", err)
	}
	defer tx.Rollback()

	saved, err := appendMovementTx(ctx, tx, movement)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit movement tx: %w", err)
	}
	return saved, nil
}

func appendMovementTx(ctx context.Context, tx *sql.Tx, movement domain.CashMovement) (*domain.CashMovement, error) {
	var status string
	var locked bool
	err := tx.QueryRowContext(ctx,
		`SELECT status, locked FROM cash_sessions WHERE id = $1 FOR UPDATE`,
		movement.SessionID,
	).Scan(&status, &locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock session row: %w", err)
	}
	if status != domain.SessionStatusOpen || locked {
		return nil, store.ErrRegisterNotOpen
	}

	if movement.ID == "" {
		movement.ID = xid.New("mov")
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cash_movements (id, session_id, type, category, amount_cents, description, sale_id, authorized_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		movement.ID, movement.SessionID, movement.Type, movement.Category,
		movement.AmountCents, movement.Description,
		nullIfEmpty(movement.SaleID), nullIfEmpty(movement.AuthorizedBy),
		movement.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert movement: %w", err)
	}
	return &movement, nil
}

func (s *Store) ListMovementsBySession(ctx context.Context, sessionID string) ([]domain.CashMovement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, type, category, amount_cents, description, sale_id, authorized_by, created_at
		FROM cash_movements
		WHERE session_id = $1
		ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	movements := make([]domain.CashMovement, 0, 32)
	for rows.Next() {
		var m domain.CashMovement
		var saleID, authorizedBy sql.NullString
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Type, &m.Category,
			&m.AmountCents, &m.Description, &saleID, &authorizedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.SaleID = saleID.String
		m.AuthorizedBy = authorizedBy.String
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (s *Store) ListDenominationsBySession(ctx context.Context, sessionID string) ([]domain.DenominationCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, kind, value_cents, qty, total_cents
		FROM cash_denominations
		WHERE session_id = $1
		ORDER BY value_cents DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list denominations: %w", err)
	}
	defer rows.Close()

	denominations := make([]domain.DenominationCount, 0, 16)
	for rows.Next() {
		var d domain.DenominationCount
		if err := rows.Scan(&d.SessionID, &d.Kind, &d.ValueCents, &d.Qty, &d.TotalCents); err != nil {
			return nil, fmt.Errorf("scan denomination: %w", err)
		}
		denominations = append(denominations, d)
	}
	return denominations, rows.Err()
}

const productColumns = `id, name, category, barcode, price_cents, cost_cents, stock, min_stock, active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	var barcode sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.Category, &barcode, &p.PriceCents,
		&p.CostCents, &p.Stock, &p.MinStock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Barcode = barcode.String
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if !includeInactive {
		query += ` WHERE active`
	}
	query += ` ORDER BY category, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Category == "" || product.PriceCents < 1 || product.Stock < 0 {
		return nil, store.ErrInvalidInput
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	product.Active = true

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, barcode, price_cents, cost_cents, stock, min_stock, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, $10)`,
		product.ID, product.Name, product.Category, nullIfEmpty(product.Barcode),
		product.PriceCents, product.CostCents, product.Stock, product.MinStock,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &product, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Category == "" || product.PriceCents < 1 {
		return nil, store.ErrInvalidInput
	}
	product.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, barcode = $4, price_cents = $5,
			cost_cents = $6, min_stock = $7, active = $8, updated_at = $9
		WHERE id = $1`,
		product.ID, product.Name, product.Category, nullIfEmpty(product.Barcode),
		product.PriceCents, product.CostCents, product.MinStock, product.Active,
		product.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update product rows: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return &product, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale, movement *domain.CashMovement, receivable *domain.Account) (*domain.Sale, error) {
	if len(sale.Items) == 0 || sale.TotalCents < 1 {
		return nil, store.ErrInvalidInput
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin sale tx: %w", err)
	}
	defer tx.Rollback()

	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	for _, item := range sale.Items {
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at = $3
			WHERE id = $1 AND active AND stock >= $2`,
			item.ProductID, item.Qty, sale.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("decrement stock rows: %w", err)
		}
		if affected == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND active)`, item.ProductID,
			).Scan(&exists); err != nil {
				return nil, fmt.Errorf("check product exists: %w", err)
			}
			if !exists {
				return nil, store.ErrNotFound
			}
			return nil, store.ErrInsufficientStock
		}
	}

	if movement != nil {
		movement.SaleID = sale.ID
		saved, err := appendMovementTx(ctx, tx, *movement)
		if err != nil {
			return nil, err
		}
		sale.SessionID = saved.SessionID
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, operator_id, customer_name, payment_method, total_cents, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sale.ID, sale.OperatorID, nullIfEmpty(sale.CustomerName),
		sale.PaymentMethod, sale.TotalCents, nullIfEmpty(sale.SessionID), sale.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}
	for _, item := range sale.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, product_id, product_name, qty, unit_price_cents, subtotal_cents)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			sale.ID, item.ProductID, item.ProductName, item.Qty,
			item.UnitPriceCents, item.SubtotalCents,
		); err != nil {
			return nil, fmt.Errorf("insert sale item: %w", err)
		}
	}

	if receivable != nil {
		account := *receivable
		if account.ID == "" {
			account.ID = xid.New("acct")
		}
		if account.CreatedAt.IsZero() {
			account.CreatedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, kind, party_name, description, amount_cents, paid_cents, status, due_date, sale_id, created_at)
			VALUES ($1, 'receivable', $2, $3, $4, 0, 'pending', $5, $6, $7)`,
			account.ID, account.PartyName, account.Description, account.AmountCents,
			nullTime(account.DueDate), sale.ID, account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("insert receivable: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sale tx: %w", err)
	}
	return &sale, nil
}

func (s *Store) GetSaleByID(ctx context.Context, id string) (*domain.Sale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, operator_id, customer_name, payment_method, total_cents, session_id, created_at
		FROM sales WHERE id = $1`, id)

	var sale domain.Sale
	var customerName, sessionID sql.NullString
	err := row.Scan(&sale.ID, &sale.OperatorID, &customerName,
		&sale.PaymentMethod, &sale.TotalCents, &sessionID, &sale.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}
	sale.CustomerName = customerName.String
	sale.SessionID = sessionID.String

	items, err := s.listSaleItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func (s *Store) listSaleItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, qty, unit_price_cents, subtotal_cents
		FROM sale_items WHERE sale_id = $1`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.SaleItem, 0, 8)
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Qty,
			&item.UnitPriceCents, &item.SubtotalCents); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, operator_id, customer_name, payment_method, total_cents, session_id, created_at
		FROM sales
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, limit)
	for rows.Next() {
		var sale domain.Sale
		var customerName, sessionID sql.NullString
		if err := rows.Scan(&sale.ID, &sale.OperatorID, &customerName,
			&sale.PaymentMethod, &sale.TotalCents, &sessionID, &sale.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sale.CustomerName = customerName.String
		sale.SessionID = sessionID.String
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		items, err := s.listSaleItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

func (s *Store) CreatePurchase(ctx context.Context, purchase domain.Purchase, newPriceCents map[string]int64, payable *domain.Account) (*domain.Purchase, error) {
	if len(purchase.Items) == 0 || purchase.TotalCents < 1 {
		return nil, store.ErrInvalidInput
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin purchase tx: %w", err)
	}
	defer tx.Rollback()

	if purchase.ID == "" {
		purchase.ID = xid.New("pur")
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO purchases (id, supplier_name, invoice_ref, total_cents, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		purchase.ID, purchase.SupplierName, nullIfEmpty(purchase.InvoiceRef),
		purchase.TotalCents, purchase.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert purchase: %w", err)
	}

	for _, item := range purchase.Items {
		price, hasPrice := newPriceCents[item.ProductID]
		var result sql.Result
		if hasPrice && price > 0 {
			result, err = tx.ExecContext(ctx, `
				UPDATE products
				SET stock = stock + $2, cost_cents = $3, price_cents = $4, updated_at = $5
				WHERE id = $1`,
				item.ProductID, item.Qty, item.UnitCostCents, price, purchase.CreatedAt)
		} else {
			result, err = tx.ExecContext(ctx, `
				UPDATE products
				SET stock = stock + $2, cost_cents = $3, updated_at = $4
				WHERE id = $1`,
				item.ProductID, item.Qty, item.UnitCostCents, purchase.CreatedAt)
		}
		if err != nil {
			return nil, fmt.Errorf("restock product: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("restock product rows: %w", err)
		}
		if affected == 0 {
			return nil, store.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_items (purchase_id, product_id, qty, unit_cost_cents, subtotal_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			purchase.ID, item.ProductID, item.Qty, item.UnitCostCents, item.SubtotalCents,
		); err != nil {
			return nil, fmt.Errorf("insert purchase item: %w", err)
		}
	}

	if payable != nil {
		account := *payable
		if account.ID == "" {
			account.ID = xid.New("acct")
		}
		if account.CreatedAt.IsZero() {
			account.CreatedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, kind, party_name, description, amount_cents, paid_cents, status, due_date, purchase_id, created_at)
			VALUES ($1, 'payable', $2, $3, $4, 0, 'pending', $5, $6, $7)`,
			account.ID, account.PartyName, account.Description, account.AmountCents,
			nullTime(account.DueDate), purchase.ID, account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("insert payable: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase tx: %w", err)
	}
	return &purchase, nil
}

func (s *Store) ListPurchases(ctx context.Context, limit int) ([]domain.Purchase, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, supplier_name, invoice_ref, total_cents, created_at
		FROM purchases
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0, limit)
	for rows.Next() {
		var purchase domain.Purchase
		var invoiceRef sql.NullString
		if err := rows.Scan(&purchase.ID, &purchase.SupplierName, &invoiceRef,
			&purchase.TotalCents, &purchase.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchase.InvoiceRef = invoiceRef.String
		purchases = append(purchases, purchase)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range purchases {
		itemRows, err := s.db.QueryContext(ctx, `
			SELECT product_id, qty, unit_cost_cents, subtotal_cents
			FROM purchase_items WHERE purchase_id = $1`, purchases[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list purchase items: %w", err)
		}
		items := make([]domain.PurchaseItem, 0, 8)
		for itemRows.Next() {
			var item domain.PurchaseItem
			if err := itemRows.Scan(&item.ProductID, &item.Qty,
				&item.UnitCostCents, &item.SubtotalCents); err != nil {
				itemRows.Close()
				return nil, fmt.Errorf("scan purchase item: %w", err)
			}
			items = append(items, item)
		}
		err = itemRows.Err()
		itemRows.Close()
		if err != nil {
			return nil, err
		}
		purchases[i].Items = items
	}
	return purchases, nil
}

const accountColumns = `id, kind, party_name, description, amount_cents, paid_cents, status, due_date, sale_id, purchase_id, created_at`

func scanAccount(row interface{ Scan(...any) error }) (*domain.Account, error) {
	var (
		account            domain.Account
		dueDate            sql.NullTime
		saleID, purchaseID sql.NullString
	)
	err := row.Scan(&account.ID, &account.Kind, &account.PartyName, &account.Description,
		&account.AmountCents, &account.PaidCents, &account.Status,
		&dueDate, &saleID, &purchaseID, &account.CreatedAt)
	if err != nil {
		return nil, err
	}
	if dueDate.Valid {
		t := dueDate.Time
		account.DueDate = &t
	}
	account.SaleID = saleID.String
	account.PurchaseID = purchaseID.String
	return &account, nil
}

func (s *Store) CreateAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, kind, party_name, description, amount_cents, paid_cents, status, due_date, sale_id, purchase_id, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, 'pending', $6, $7, $8, $9)`,
		account.ID, account.Kind, account.PartyName, account.Description,
		account.AmountCents, nullTime(account.DueDate),
		nullIfEmpty(account.SaleID), nullIfEmpty(account.PurchaseID), account.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &account, nil
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func (s *Store) ListAccounts(ctx context.Context, kind string, status string, limit int) ([]domain.Account, error) {
	if limit < 1 {
		limit = 100
	}
	query := `SELECT ` + accountColumns + ` FROM accounts`
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if kind != "" {
		args = append(args, kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (s *Store) AddAccountPayment(ctx context.Context, payment domain.AccountPayment) (*domain.Account, error) {
	if payment.AmountCents < 1 {
		return nil, store.ErrInvalidInput
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`,
		payment.AccountID)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock account row: %w", err)
	}

	remaining := account.AmountCents - account.PaidCents
	if payment.AmountCents > remaining {
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

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET paid_cents = $2, status = $3 WHERE id = $1`,
		account.ID, account.PaidCents, account.Status,
	); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO account_payments (id, account_id, amount_cents, method, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		payment.ID, payment.AccountID, payment.AmountCents,
		nullIfEmpty(payment.Method), nullIfEmpty(payment.Notes), payment.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert account payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment tx: %w", err)
	}
	return account, nil
}

func (s *Store) ListAccountPayments(ctx context.Context, accountID string) ([]domain.AccountPayment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, amount_cents, method, notes, created_at
		FROM account_payments
		WHERE account_id = $1
		ORDER BY created_at ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list account payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.AccountPayment, 0, 8)
	for rows.Next() {
		var p domain.AccountPayment
		var method, notes sql.NullString
		if err := rows.Scan(&p.ID, &p.AccountID, &p.AmountCents, &method, &notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account payment: %w", err)
		}
		p.Method = method.String
		p.Notes = notes.String
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *Store) ListAccountsDueBy(ctx context.Context, by time.Time) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE status != 'paid' AND due_date IS NOT NULL AND due_date <= $1
		ORDER BY due_date ASC`, by)
	if err != nil {
		return nil, fmt.Errorf("list due accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, 16)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (s *Store) CreateNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error) {
	if notification.Title == "" || notification.Type == "" {
		return nil, store.ErrInvalidInput
	}
	if notification.ID == "" {
		notification.ID = xid.New("ntf")
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, type, title, message, icon, color, reference_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)`,
		notification.ID, notification.Type, notification.Title, notification.Message,
		nullIfEmpty(notification.Icon), nullIfEmpty(notification.Color),
		nullIfEmpty(notification.ReferenceID), notification.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return &notification, nil
}

func (s *Store) ListNotifications(ctx context.Context, filter string, limit int, offset int) ([]domain.Notification, error) {
	if limit < 1 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT id, type, title, message, icon, color, reference_id, read, created_at FROM notifications`
	switch filter {
	case "unread":
		query += ` WHERE NOT read`
	case "read":
		query += ` WHERE read`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0, limit)
	for rows.Next() {
		var n domain.Notification
		var icon, color, referenceID sql.NullString
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message,
			&icon, &color, &referenceID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Icon = icon.String
		n.Color = color.String
		n.ReferenceID = referenceID.String
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE NOT read`)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications rows: %w", err)
	}
	return int(affected), nil
}

func (s *Store) CountUnreadNotifications(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE NOT read`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *Store) FindRecentNotification(ctx context.Context, notifyType string, referenceID string, since time.Time) (*domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, title, message, icon, color, reference_id, read, created_at
		FROM notifications
		WHERE type = $1 AND reference_id = $2 AND created_at > $3
		ORDER BY created_at DESC
		LIMIT 1`, notifyType, referenceID, since)

	var n domain.Notification
	var icon, color, refID sql.NullString
	err := row.Scan(&n.ID, &n.Type, &n.Title, &n.Message,
		&icon, &color, &refID, &n.Read, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find recent notification: %w", err)
	}
	n.Icon = icon.String
	n.Color = color.String
	n.ReferenceID = refID.String
	return &n, nil
}

func (s *Store) DeleteReadNotificationsBefore(ctx context.Context, before time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE read AND created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge notifications: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge notifications rows: %w", err)
	}
	return int(affected), nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, module, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.ActorUsername, entry.ActorRole,
		entry.Action, entry.Module, entry.Detail, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (s *Store) ListAuditLogs(ctx context.Context, module string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}
	query := `SELECT id, actor_username, actor_role, action, module, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at < $2`
	args := []any{from, to}
	if module != "" {
		args = append(args, module)
		query += fmt.Sprintf(" AND module = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole,
			&entry.Action, &entry.Module, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" {
		return store.ErrInvalidInput
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		username, user.Password, user.Role, user.Active, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidInput
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role,
			&user.Active, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET password = $2 WHERE username = $1`, username, password)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user password rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
