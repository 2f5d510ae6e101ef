package store

import (
	"context"
	"errors"
	"time"

	"cajapos/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrRegisterOpen      = errors.New("register already open")
	ErrRegisterNotOpen   = errors.New("register not open")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidInput      = errors.New("invalid input")
)

// SessionClose carries the reconciliation result applied to a session header
// at close. The implementation must write the header update and the
// denomination rows in a single transaction, and only against a session that
// is still open.
type SessionClose struct {
	ClosedAt        time.Time
	ExpectedCents   int64
	CountedCents    int64
	DifferenceCents int64
	ClosingNotes    string
	Denominations   []domain.DenominationCount
}

type Repository interface {
	CreateSession(ctx context.Context, session domain.CashSession) (*domain.CashSession, error)
	GetSessionByID(ctx context.Context, id string) (*domain.CashSession, error)
	GetActiveSessionByOperator(ctx context.Context, operatorID string) (*domain.CashSession, error)
	CountOpenSessionsByOperator(ctx context.Context, operatorID string) (int, error)
	ListSessions(ctx context.Context, limit int) ([]domain.CashSession, error)
	CloseSession(ctx context.Context, sessionID string, close SessionClose) (*domain.CashSession, error)
	AppendMovement(ctx context.Context, movement domain.CashMovement) (*domain.CashMovement, error)
	ListMovementsBySession(ctx context.Context, sessionID string) ([]domain.CashMovement, error)
	ListDenominationsBySession(ctx context.Context, sessionID string) ([]domain.DenominationCount, error)

	ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)

	CreateSale(ctx context.Context, sale domain.Sale, movement *domain.CashMovement, receivable *domain.Account) (*domain.Sale, error)
	GetSaleByID(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, limit int) ([]domain.Sale, error)

	CreatePurchase(ctx context.Context, purchase domain.Purchase, newPriceCents map[string]int64, payable *domain.Account) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, limit int) ([]domain.Purchase, error)

	CreateAccount(ctx context.Context, account domain.Account) (*domain.Account, error)
	GetAccountByID(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, kind string, status string, limit int) ([]domain.Account, error)
	AddAccountPayment(ctx context.Context, payment domain.AccountPayment) (*domain.Account, error)
	ListAccountPayments(ctx context.Context, accountID string) ([]domain.AccountPayment, error)
	ListAccountsDueBy(ctx context.Context, by time.Time) ([]domain.Account, error)

	CreateNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error)
	ListNotifications(ctx context.Context, filter string, limit int, offset int) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) (int, error)
	CountUnreadNotifications(ctx context.Context) (int64, error)
	FindRecentNotification(ctx context.Context, notifyType string, referenceID string, since time.Time) (*domain.Notification, error)
	DeleteReadNotificationsBefore(ctx context.Context, before time.Time) (int, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, module string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
