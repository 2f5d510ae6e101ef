package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashSession is one open-to-close lifecycle of a register. The header is
// mutated exactly once, at close, and Locked stays true from then on. The
// reconciliation fields are nil until the session is closed.
type CashSession struct {
	ID                 string
	OperatorID         string
	OpeningAmountCents int64
	ExpectedCents      *int64
	CountedCents       *int64
	DifferenceCents    *int64
	Status             string
	Notes              string
	ClosingNotes       string
	Locked             bool
	OpenedAt           time.Time
	ClosedAt           *time.Time
}

// CashMovement is an append-only ledger entry. Amount is always a positive
// magnitude; the sign is implied by Type.
type CashMovement struct {
	ID           string
	SessionID    string
	Type         string
	Category     string
	AmountCents  int64
	Description  string
	SaleID       string
	AuthorizedBy string
	CreatedAt    time.Time
}

// DenominationCount is one physical-count bucket written at session close.
type DenominationCount struct {
	SessionID  string
	Kind       string
	ValueCents int64
	Qty        int
	TotalCents int64
}

const (
	SessionStatusOpen   = "open"
	SessionStatusClosed = "closed"
)

const (
	MovementTypeSale    = "sale"
	MovementTypeIncome  = "income"
	MovementTypeExpense = "expense"
)

const (
	DenomKindBill = "bill"
	DenomKindCoin = "coin"
)

const (
	PayMethodCash   = "cash"
	PayMethodCredit = "credit"
	PayMethodQR     = "qr"
)

type SessionOpenRequest struct {
	OperatorID    string          `json:"operator_id"`
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	Notes         string          `json:"notes,omitempty"`
}

type SessionOpenResponse struct {
	ID            string          `json:"id"`
	OpeningAmount decimal.Decimal `json:"opening_amount"`
}

type MovementRequest struct {
	SessionID    string          `json:"session_id"`
	Type         string          `json:"type"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description,omitempty"`
	AuthorizedBy string          `json:"authorized_by,omitempty"`
	ManagerPIN   string          `json:"manager_pin,omitempty"`
}

type DenominationEntry struct {
	Kind  string          `json:"kind"`
	Value decimal.Decimal `json:"value"`
	Qty   int             `json:"qty"`
}

type SessionCloseRequest struct {
	SessionID     string              `json:"session_id"`
	Denominations []DenominationEntry `json:"denominations"`
	ClosingNotes  string              `json:"closing_notes,omitempty"`
}

type SessionCloseResponse struct {
	SessionID      string          `json:"session_id"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	CountedAmount  decimal.Decimal `json:"counted_amount"`
	Difference     decimal.Decimal `json:"difference"`
}

// SessionView is the decimal-projected shape of a CashSession. Internal cents
// never cross the API boundary.
type SessionView struct {
	ID             string           `json:"id"`
	OperatorID     string           `json:"operator_id"`
	OpeningAmount  decimal.Decimal  `json:"opening_amount"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty"`
	CountedAmount  *decimal.Decimal `json:"counted_amount,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	Status         string           `json:"status"`
	Notes          string           `json:"notes,omitempty"`
	ClosingNotes   string           `json:"closing_notes,omitempty"`
	Locked         bool             `json:"locked"`
	OpenedAt       time.Time        `json:"opened_at"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
}

type MovementView struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description,omitempty"`
	SaleID       string          `json:"sale_id,omitempty"`
	AuthorizedBy string          `json:"authorized_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type DenominationView struct {
	Kind  string          `json:"kind"`
	Value decimal.Decimal `json:"value"`
	Qty   int             `json:"qty"`
	Total decimal.Decimal `json:"total"`
}

type SessionTotals struct {
	Sales    decimal.Decimal `json:"sales"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Expected decimal.Decimal `json:"expected"`
}

type ActiveSessionResponse struct {
	HasActiveRegister  bool           `json:"hasActiveRegister"`
	Register           *SessionView   `json:"register,omitempty"`
	Movements          []MovementView `json:"movements,omitempty"`
	Totals             *SessionTotals `json:"totals,omitempty"`
	MultipleOpen       bool           `json:"multipleOpen,omitempty"`
	OpenRegistersCount int            `json:"openRegistersCount,omitempty"`
}

type SessionDetailResponse struct {
	Register      SessionView        `json:"register"`
	Movements     []MovementView     `json:"movements"`
	Denominations []DenominationView `json:"denominations"`
	Totals        SessionTotals      `json:"totals"`
}

type SessionHistoryResponse struct {
	Sessions []SessionView `json:"sessions"`
}

type Product struct {
	ID         string
	Name       string
	Category   string
	Barcode    string
	PriceCents int64
	CostCents  int64
	Stock      int
	MinStock   int
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type ProductCreateRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Barcode  string          `json:"barcode,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"min_stock"`
}

type ProductUpdateRequest struct {
	Name     *string          `json:"name,omitempty"`
	Category *string          `json:"category,omitempty"`
	Barcode  *string          `json:"barcode,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Cost     *decimal.Decimal `json:"cost,omitempty"`
	MinStock *int             `json:"min_stock,omitempty"`
	Active   *bool            `json:"active,omitempty"`
}

type ProductView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Barcode   string          `json:"barcode,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	Stock     int             `json:"stock"`
	MinStock  int             `json:"min_stock"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

type SaleItem struct {
	ProductID      string
	ProductName    string
	Qty            int
	UnitPriceCents int64
	SubtotalCents  int64
}

type Sale struct {
	ID            string
	OperatorID    string
	CustomerName  string
	PaymentMethod string
	TotalCents    int64
	SessionID     string
	CreatedAt     time.Time
	Items         []SaleItem
}

type SaleLineRequest struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type SaleCreateRequest struct {
	OperatorID    string            `json:"operator_id,omitempty"`
	PaymentMethod string            `json:"payment_method"`
	CustomerName  string            `json:"customer_name,omitempty"`
	DueDate       string            `json:"due_date,omitempty"`
	Items         []SaleLineRequest `json:"items"`
}

type SaleItemView struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleView struct {
	ID            string          `json:"id"`
	OperatorID    string          `json:"operator_id"`
	CustomerName  string          `json:"customer_name,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	SessionID     string          `json:"session_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []SaleItemView  `json:"items"`
}

type PurchaseItem struct {
	ProductID     string
	Qty           int
	UnitCostCents int64
	SubtotalCents int64
}

type Purchase struct {
	ID           string
	SupplierName string
	InvoiceRef   string
	TotalCents   int64
	CreatedAt    time.Time
	Items        []PurchaseItem
}

type PurchaseLineRequest struct {
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	MarginPct float64         `json:"margin_pct"`
}

type PurchaseCreateRequest struct {
	SupplierName string                `json:"supplier_name"`
	InvoiceRef   string                `json:"invoice_ref,omitempty"`
	OnCredit     bool                  `json:"on_credit,omitempty"`
	DueDate      string                `json:"due_date,omitempty"`
	Items        []PurchaseLineRequest `json:"items"`
}

type PurchaseItemView struct {
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type PurchaseView struct {
	ID           string             `json:"id"`
	SupplierName string             `json:"supplier_name"`
	InvoiceRef   string             `json:"invoice_ref,omitempty"`
	Total        decimal.Decimal    `json:"total"`
	CreatedAt    time.Time          `json:"created_at"`
	Items        []PurchaseItemView `json:"items"`
}

const (
	AccountKindReceivable = "receivable"
	AccountKindPayable    = "payable"
)

const (
	AccountStatusPending = "pending"
	AccountStatusPartial = "partial"
	AccountStatusPaid    = "paid"
)

type Account struct {
	ID          string
	Kind        string
	PartyName   string
	Description string
	AmountCents int64
	PaidCents   int64
	Status      string
	DueDate     *time.Time
	SaleID      string
	PurchaseID  string
	CreatedAt   time.Time
}

type AccountPayment struct {
	ID          string
	AccountID   string
	AmountCents int64
	Method      string
	Notes       string
	CreatedAt   time.Time
}

type AccountCreateRequest struct {
	Kind        string          `json:"kind"`
	PartyName   string          `json:"party_name"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date,omitempty"`
}

type AccountPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
	Notes  string          `json:"notes,omitempty"`
}

type AccountView struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	PartyName   string          `json:"party_name"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Paid        decimal.Decimal `json:"paid"`
	Remaining   decimal.Decimal `json:"remaining"`
	Status      string          `json:"status"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	SaleID      string          `json:"sale_id,omitempty"`
	PurchaseID  string          `json:"purchase_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type AccountPaymentView struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Notification carries no monetary fields, so the persistence model doubles
// as the API shape.
type Notification struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Icon        string    `json:"icon,omitempty"`
	Color       string    `json:"color,omitempty"`
	ReferenceID string    `json:"reference_id,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	NotifyTypeCashRegister = "cash_register"
	NotifyTypeLowStock     = "low_stock"
	NotifyTypeAccountDue   = "account_due"
	NotifyTypeSale         = "sale"
)

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	Module        string    `json:"module"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}
