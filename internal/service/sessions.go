package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cajapos/backend/internal/domain"
	"cajapos/backend/internal/events"
	"cajapos/backend/internal/money"
	"cajapos/backend/internal/store"
	"cajapos/backend/internal/xid"
)

// reconcile computes the closing figures for a session from its full ledger.
// Sales and incomes add to the drawer, expenses subtract, and the counted
// total is the sum of the physical denomination buckets. All inputs and
// outputs are integer cents, so the same ledger always reconciles to the
// same result.
func reconcile(openingCents int64, movements []domain.CashMovement, denominations []domain.DenominationCount) (expected int64, counted int64, difference int64) {
	expected = openingCents
	for _, m := range movements {
		switch m.Type {
		case domain.MovementTypeSale, domain.MovementTypeIncome:
			expected += m.AmountCents
		case domain.MovementTypeExpense:
			expected -= m.AmountCents
		}
	}
	for _, d := range denominations {
		counted += d.TotalCents
	}
	difference = counted - expected
	return expected, counted, difference
}

func sessionTotals(openingCents int64, movements []domain.CashMovement) domain.SessionTotals {
	var sales, income, expenses int64
	for _, m := range movements {
		switch m.Type {
		case domain.MovementTypeSale:
			sales += m.AmountCents
		case domain.MovementTypeIncome:
			income += m.AmountCents
		case domain.MovementTypeExpense:
			expenses += m.AmountCents
		}
	}
	return domain.SessionTotals{
		Sales:    money.FromCents(sales),
		Income:   money.FromCents(income),
		Expenses: money.FromCents(expenses),
		Expected: money.FromCents(openingCents + sales + income - expenses),
	}
}

func (s *Service) OpenSession(ctx context.Context, req domain.SessionOpenRequest) (domain.SessionOpenResponse, error) {
	operatorID := strings.TrimSpace(req.OperatorID)
	if operatorID == "" {
		if actor, ok := ActorFromContext(ctx); ok {
			operatorID = actor.Username
		}
	}
	openingCents := money.ToCents(req.OpeningAmount)
	if operatorID == "" || openingCents < 0 {
		return domain.SessionOpenResponse{}, store.ErrInvalidInput
	}

	// The store enforces the same rule with a partial unique index; this
	// pre-check just yields a clean error without burning an insert.
	if _, err := s.repo.GetActiveSessionByOperator(ctx, operatorID); err == nil {
		return domain.SessionOpenResponse{}, store.ErrRegisterOpen
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.SessionOpenResponse{}, err
	}

	session, err := s.repo.CreateSession(ctx, domain.CashSession{
		ID:                 xid.New("reg"),
		OperatorID:         operatorID,
		OpeningAmountCents: openingCents,
		Notes:              strings.TrimSpace(req.Notes),
		OpenedAt:           s.now(),
	})
	if err != nil {
		return domain.SessionOpenResponse{}, err
	}

	s.notify(ctx, domain.Notification{
		ID:          xid.New("ntf"),
		Type:        domain.NotifyTypeCashRegister,
		Title:       "Caja Abierta",
		Message:     fmt.Sprintf("Caja abierta con %s por %s", money.FromCents(openingCents).StringFixed(2), operatorID),
		Icon:        "cash-register",
		Color:       "green",
		ReferenceID: session.ID,
	})
	s.logAudit(ctx, "cash_open", "cash_register", fmt.Sprintf("session=%s,opening=%d", session.ID, openingCents))

	return domain.SessionOpenResponse{
		ID:            session.ID,
		OpeningAmount: money.FromCents(session.OpeningAmountCents),
	}, nil
}

func (s *Service) RecordMovement(ctx context.Context, req domain.MovementRequest) (domain.MovementView, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	movementType := strings.ToLower(strings.TrimSpace(req.Type))
	amountCents := money.ToCents(req.Amount)

	if sessionID == "" || amountCents < 1 {
		return domain.MovementView{}, store.ErrInvalidInput
	}
	switch movementType {
	case domain.MovementTypeIncome, domain.MovementTypeExpense:
	case domain.MovementTypeSale:
		// Sale entries are posted by the sales flow only.
		return domain.MovementView{}, fmt.Errorf("%w: sale movements are recorded by sales", store.ErrInvalidInput)
	default:
		return domain.MovementView{}, store.ErrInvalidInput
	}
	if movementType == domain.MovementTypeExpense && amountCents > s.expenseAuthCents && strings.TrimSpace(req.AuthorizedBy) == "" {
		return domain.MovementView{}, fmt.Errorf("%w: expense above limit requires manager authorization", store.ErrInvalidInput)
	}

	movement, err := s.repo.AppendMovement(ctx, domain.CashMovement{
		ID:           xid.New("mov"),
		SessionID:    sessionID,
		Type:         movementType,
		Category:     strings.TrimSpace(req.Category),
		AmountCents:  amountCents,
		Description:  strings.TrimSpace(req.Description),
		AuthorizedBy: strings.TrimSpace(req.AuthorizedBy),
		CreatedAt:    s.now(),
	})
	if err != nil {
		return domain.MovementView{}, err
	}

	title := "Ingreso de Efectivo"
	icon := "arrow-down"
	color := "green"
	if movementType == domain.MovementTypeExpense {
		title = "Egreso de Efectivo"
		icon = "arrow-up"
		color = "red"
	}
	s.notify(ctx, domain.Notification{
		ID:          xid.New("ntf"),
		Type:        domain.NotifyTypeCashRegister,
		Title:       title,
		Message:     fmt.Sprintf("%s por %s", title, money.FromCents(amountCents).StringFixed(2)),
		Icon:        icon,
		Color:       color,
		ReferenceID: sessionID,
	})
	s.logAudit(ctx, "cash_movement", "cash_register", fmt.Sprintf("session=%s,type=%s,amount=%d", sessionID, movementType, amountCents))

	views := movementViews([]domain.CashMovement{*movement})
	return views[0], nil
}

func (s *Service) CloseSession(ctx context.Context, req domain.SessionCloseRequest) (domain.SessionCloseResponse, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return domain.SessionCloseResponse{}, store.ErrInvalidInput
	}

	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return domain.SessionCloseResponse{}, err
	}
	if session.Status != domain.SessionStatusOpen || session.Locked {
		return domain.SessionCloseResponse{}, store.ErrRegisterNotOpen
	}

	denominations := make([]domain.DenominationCount, 0, len(req.Denominations))
	for _, entry := range req.Denominations {
		kind := strings.ToLower(strings.TrimSpace(entry.Kind))
		if kind != domain.DenomKindBill && kind != domain.DenomKindCoin {
			return domain.SessionCloseResponse{}, store.ErrInvalidInput
		}
		valueCents := money.ToCents(entry.Value)
		if valueCents < 1 || entry.Qty < 0 {
			return domain.SessionCloseResponse{}, store.ErrInvalidInput
		}
		denominations = append(denominations, domain.DenominationCount{
			SessionID:  sessionID,
			Kind:       kind,
			ValueCents: valueCents,
			Qty:        entry.Qty,
			TotalCents: valueCents * int64(entry.Qty),
		})
	}

	movements, err := s.repo.ListMovementsBySession(ctx, sessionID)
	if err != nil {
		return domain.SessionCloseResponse{}, err
	}
	expected, counted, difference := reconcile(session.OpeningAmountCents, movements, denominations)

	closed, err := s.repo.CloseSession(ctx, sessionID, store.SessionClose{
		ClosedAt:        s.now(),
		ExpectedCents:   expected,
		CountedCents:    counted,
		DifferenceCents: difference,
		ClosingNotes:    strings.TrimSpace(req.ClosingNotes),
		Denominations:   denominations,
	})
	if err != nil {
		return domain.SessionCloseResponse{}, err
	}

	s.publish(ctx, events.TopicSessionClosed, events.SessionClosed{
		SessionID:      closed.ID,
		OperatorID:     closed.OperatorID,
		ExpectedAmount: money.FromCents(expected),
		CountedAmount:  money.FromCents(counted),
		Difference:     money.FromCents(difference),
	})
	s.notify(ctx, domain.Notification{
		ID:          xid.New("ntf"),
		Type:        domain.NotifyTypeCashRegister,
		Title:       "Cierre de Caja",
		Message:     fmt.Sprintf("Caja cerrada con diferencia de %s", money.FromCents(difference).StringFixed(2)),
		Icon:        "cash-register",
		Color:       "blue",
		ReferenceID: closed.ID,
	})
	s.logAudit(ctx, "cash_close", "cash_register", fmt.Sprintf("session=%s,expected=%d,counted=%d,difference=%d", closed.ID, expected, counted, difference))

	return domain.SessionCloseResponse{
		SessionID:      closed.ID,
		ExpectedAmount: money.FromCents(expected),
		CountedAmount:  money.FromCents(counted),
		Difference:     money.FromCents(difference),
	}, nil
}

func (s *Service) ActiveSession(ctx context.Context, operatorID string) (domain.ActiveSessionResponse, error) {
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return domain.ActiveSessionResponse{}, store.ErrInvalidInput
	}

	openCount, err := s.repo.CountOpenSessionsByOperator(ctx, operatorID)
	if err != nil {
		return domain.ActiveSessionResponse{}, err
	}
	if openCount == 0 {
		return domain.ActiveSessionResponse{HasActiveRegister: false}, nil
	}

	session, err := s.repo.GetActiveSessionByOperator(ctx, operatorID)
	if errors.Is(err, store.ErrNotFound) {
		// The session closed between the count and the fetch.
		return domain.ActiveSessionResponse{HasActiveRegister: false}, nil
	}
	if err != nil {
		return domain.ActiveSessionResponse{}, err
	}
	movements, err := s.repo.ListMovementsBySession(ctx, session.ID)
	if err != nil {
		return domain.ActiveSessionResponse{}, err
	}

	view := sessionView(*session)
	totals := sessionTotals(session.OpeningAmountCents, movements)
	return domain.ActiveSessionResponse{
		HasActiveRegister:  true,
		Register:           &view,
		Movements:          movementViews(movements),
		Totals:             &totals,
		MultipleOpen:       openCount > 1,
		OpenRegistersCount: openCount,
	}, nil
}

func (s *Service) SessionDetail(ctx context.Context, sessionID string) (domain.SessionDetailResponse, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.SessionDetailResponse{}, store.ErrInvalidInput
	}

	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return domain.SessionDetailResponse{}, err
	}
	movements, err := s.repo.ListMovementsBySession(ctx, sessionID)
	if err != nil {
		return domain.SessionDetailResponse{}, err
	}
	denominations, err := s.repo.ListDenominationsBySession(ctx, sessionID)
	if err != nil {
		return domain.SessionDetailResponse{}, err
	}

	return domain.SessionDetailResponse{
		Register:      sessionView(*session),
		Movements:     movementViews(movements),
		Denominations: denominationViews(denominations),
		Totals:        sessionTotals(session.OpeningAmountCents, movements),
	}, nil
}

func (s *Service) SessionHistory(ctx context.Context, limit int) (domain.SessionHistoryResponse, error) {
	if limit < 1 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	sessions, err := s.repo.ListSessions(ctx, limit)
	if err != nil {
		return domain.SessionHistoryResponse{}, err
	}

	views := make([]domain.SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, sessionView(session))
	}
	return domain.SessionHistoryResponse{Sessions: views}, nil
}
