package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cajapos/backend/internal/domain"
	"cajapos/backend/internal/money"
	"cajapos/backend/internal/store"
	"cajapos/backend/internal/xid"
)

func (s *Service) CreateAccount(ctx context.Context, req domain.AccountCreateRequest) (domain.AccountView, error) {
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	party := strings.TrimSpace(req.PartyName)
	amountCents := money.ToCents(req.Amount)
	if kind != domain.AccountKindReceivable && kind != domain.AccountKindPayable {
		return domain.AccountView{}, store.ErrInvalidInput
	}
	if party == "" || amountCents < 1 {
		return domain.AccountView{}, store.ErrInvalidInput
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return domain.AccountView{}, err
	}

	account, err := s.repo.CreateAccount(ctx, domain.Account{
		ID:          xid.New("acct"),
		Kind:        kind,
		PartyName:   party,
		Description: strings.TrimSpace(req.Description),
		AmountCents: amountCents,
		DueDate:     dueDate,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return domain.AccountView{}, err
	}

	s.logAudit(ctx, "account_create", "accounts", fmt.Sprintf("account=%s,kind=%s,amount=%d", account.ID, kind, amountCents))
	return accountView(*account), nil
}

func (s *Service) GetAccount(ctx context.Context, accountID string) (domain.AccountView, []domain.AccountPaymentView, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.AccountView{}, nil, store.ErrInvalidInput
	}

	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return domain.AccountView{}, nil, err
	}
	payments, err := s.repo.ListAccountPayments(ctx, accountID)
	if err != nil {
		return domain.AccountView{}, nil, err
	}

	paymentViews := make([]domain.AccountPaymentView, 0, len(payments))
	for _, p := range payments {
		paymentViews = append(paymentViews, domain.AccountPaymentView{
			ID:        p.ID,
			AccountID: p.AccountID,
			Amount:    money.FromCents(p.AmountCents),
			Method:    p.Method,
			Notes:     p.Notes,
			CreatedAt: p.CreatedAt,
		})
	}
	return accountView(*account), paymentViews, nil
}

func (s *Service) ListAccounts(ctx context.Context, kind string, status string, limit int) ([]domain.AccountView, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	status = strings.ToLower(strings.TrimSpace(status))
	switch kind {
	case "", domain.AccountKindReceivable, domain.AccountKindPayable:
	default:
		return nil, store.ErrInvalidInput
	}
	switch status {
	case "", domain.AccountStatusPending, domain.AccountStatusPartial, domain.AccountStatusPaid:
	default:
		return nil, store.ErrInvalidInput
	}

	accounts, err := s.repo.ListAccounts(ctx, kind, status, limit)
	if err != nil {
		return nil, err
	}
	views := make([]domain.AccountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, accountView(account))
	}
	return views, nil
}

func (s *Service) RecordPayment(ctx context.Context, accountID string, req domain.AccountPaymentRequest) (domain.AccountView, error) {
	accountID = strings.TrimSpace(accountID)
	amountCents := money.ToCents(req.Amount)
	if accountID == "" || amountCents < 1 {
		return domain.AccountView{}, store.ErrInvalidInput
	}

	account, err := s.repo.AddAccountPayment(ctx, domain.AccountPayment{
		ID:          xid.New("pay"),
		AccountID:   accountID,
		AmountCents: amountCents,
		Method:      strings.ToLower(strings.TrimSpace(req.Method)),
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   s.now(),
	})
	if err != nil {
		return domain.AccountView{}, err
	}

	if account.Status == domain.AccountStatusPaid {
		s.notify(ctx, domain.Notification{
			ID:          xid.New("ntf"),
			Type:        domain.NotifyTypeAccountDue,
			Title:       "Cuenta Saldada",
			Message:     fmt.Sprintf("La cuenta de %s fue saldada por completo", account.PartyName),
			Icon:        "check-circle",
			Color:       "green",
			ReferenceID: account.ID,
		})
	}
	s.logAudit(ctx, "account_payment", "accounts", fmt.Sprintf("account=%s,amount=%d,status=%s", account.ID, amountCents, account.Status))

	return accountView(*account), nil
}

// CheckDueAccounts raises a notification for every unpaid account that is due
// today or overdue, at most once per account per business day.
func (s *Service) CheckDueAccounts(ctx context.Context) ([]domain.AccountView, error) {
	endOfDay := s.startOfDay().Add(24 * time.Hour)
	due, err := s.repo.ListAccountsDueBy(ctx, endOfDay)
	if err != nil {
		return nil, err
	}

	since := s.startOfDay()
	views := make([]domain.AccountView, 0, len(due))
	for _, account := range due {
		views = append(views, accountView(account))

		if _, err := s.repo.FindRecentNotification(ctx, domain.NotifyTypeAccountDue, account.ID, since); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[notify] WARN: due account lookup failed account=%s: %v", account.ID, err)
			continue
		}

		label := "Cuenta por Cobrar Vencida"
		if account.Kind == domain.AccountKindPayable {
			label = "Cuenta por Pagar Vencida"
		}
		remaining := money.FromCents(account.AmountCents - account.PaidCents)
		s.notify(ctx, domain.Notification{
			ID:          xid.New("ntf"),
			Type:        domain.NotifyTypeAccountDue,
			Title:       label,
			Message:     fmt.Sprintf("%s debe %s", account.PartyName, remaining.StringFixed(2)),
			Icon:        "alert-circle",
			Color:       "red",
			ReferenceID: account.ID,
		})
	}
	return views, nil
}
