package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// memStore is an in-memory Store for engine tests. Begin copies the whole
// state; Commit swaps the copy in. A rolled-back unit of work therefore leaves
// the store bit-for-bit unchanged, matching the transactional guarantee of the
// real adapter.
type memStore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	balances     map[string]*models.Balance
	transactions []*models.Transaction
	shifts       map[uuid.UUID]*models.Shift
	categories   map[uuid.UUID]string
	expenses     map[uuid.UUID]*models.Expense
	seq          int64
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		balances:   make(map[string]*models.Balance),
		shifts:     make(map[uuid.UUID]*models.Shift),
		categories: make(map[uuid.UUID]string),
		expenses:   make(map[uuid.UUID]*models.Expense),
	}}
}

func (s *memStore) seedBalance(code string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.balances[code] = &models.Balance{CurrencyCode: code, Amount: amount}
}

func (s *memStore) seedCategory(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.state.categories[id] = name
	return id
}

func (s *memStore) balance(code string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.state.balances[code]; ok {
		return b.Amount
	}
	return decimal.Zero
}

func (s *memStore) lot(id uuid.UUID) *models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.state.transactions {
		if t.ID == id {
			cp := *t
			return &cp
		}
	}
	return nil
}

func (s *memStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.transactions)
}

func (s *memStore) Begin(context.Context) (Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &memTx{store: s, state: s.state.clone()}, nil
}

func (st memState) clone() memState {
	cp := memState{
		balances:     make(map[string]*models.Balance, len(st.balances)),
		transactions: make([]*models.Transaction, len(st.transactions)),
		shifts:       make(map[uuid.UUID]*models.Shift, len(st.shifts)),
		categories:   make(map[uuid.UUID]string, len(st.categories)),
		expenses:     make(map[uuid.UUID]*models.Expense, len(st.expenses)),
		seq:          st.seq,
	}
	for code, b := range st.balances {
		c := *b
		cp.balances[code] = &c
	}
	for i, t := range st.transactions {
		c := *t
		cp.transactions[i] = &c
	}
	for id, sh := range st.shifts {
		c := *sh
		c.StartingBalances = cloneSnapshot(sh.StartingBalances)
		c.EndingBalances = cloneSnapshot(sh.EndingBalances)
		cp.shifts[id] = &c
	}
	for id, name := range st.categories {
		cp.categories[id] = name
	}
	for id, e := range st.expenses {
		c := *e
		cp.expenses[id] = &c
	}
	return cp
}

func cloneSnapshot(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return nil
	}
	cp := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

type memTx struct {
	store     *memStore
	state     memState
	committed bool
}

func (tx *memTx) Commit(context.Context) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.store.state = tx.state
	tx.committed = true
	return nil
}

func (tx *memTx) Rollback(context.Context) error { return nil }

func (tx *memTx) BalanceForUpdate(_ context.Context, code string) (*models.Balance, error) {
	b, ok := tx.state.balances[code]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (tx *memTx) AdjustBalance(_ context.Context, code string, delta decimal.Decimal) error {
	b, ok := tx.state.balances[code]
	if !ok {
		return ErrUnknownCurrency
	}
	next := b.Amount.Add(delta)
	if next.LessThan(b.Reserved) {
		return ErrInsufficientBalance
	}
	b.Amount = next
	b.UpdatedAt = time.Now()
	return nil
}

func (tx *memTx) ReserveFunds(_ context.Context, code string, amount decimal.Decimal) error {
	b, ok := tx.state.balances[code]
	if !ok {
		return ErrUnknownCurrency
	}
	if b.Available().LessThan(amount) {
		return ErrInsufficientBalance
	}
	b.Reserved = b.Reserved.Add(amount)
	return nil
}

func (tx *memTx) ReleaseFunds(_ context.Context, code string, amount decimal.Decimal) error {
	b, ok := tx.state.balances[code]
	if !ok {
		return ErrUnknownCurrency
	}
	if b.Reserved.LessThan(amount) {
		return ErrInsufficientBalance
	}
	b.Reserved = b.Reserved.Sub(amount)
	return nil
}

func (tx *memTx) BalanceSnapshot(context.Context) (map[string]decimal.Decimal, error) {
	snap := make(map[string]decimal.Decimal, len(tx.state.balances))
	for code, b := range tx.state.balances {
		snap[code] = b.Amount
	}
	return snap, nil
}

func (tx *memTx) OpenLots(_ context.Context, code string) ([]*models.Transaction, error) {
	var lots []*models.Transaction
	for _, t := range tx.state.transactions {
		if t.CurrencyCode == code && t.IsOpenLot() {
			lots = append(lots, t)
		}
	}
	sort.SliceStable(lots, func(i, j int) bool {
		if !lots[i].CreatedAt.Equal(lots[j].CreatedAt) {
			return lots[i].CreatedAt.Before(lots[j].CreatedAt)
		}
		return lots[i].Seq < lots[j].Seq
	})
	return lots, nil
}

func (tx *memTx) SetLotRemaining(_ context.Context, id uuid.UUID, remaining decimal.Decimal) error {
	for _, t := range tx.state.transactions {
		if t.ID == id {
			t.Remaining = decimal.NullDecimal{Decimal: remaining, Valid: true}
			return nil
		}
	}
	return ErrNotFound
}

func (tx *memTx) InsertTransaction(_ context.Context, t *models.Transaction) error {
	tx.state.seq++
	t.Seq = tx.state.seq
	cp := *t
	tx.state.transactions = append(tx.state.transactions, &cp)
	return nil
}

func (tx *memTx) ActiveShiftForUpdate(context.Context) (*models.Shift, error) {
	for _, s := range tx.state.shifts {
		if s.Open() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (tx *memTx) InsertShift(_ context.Context, s *models.Shift) error {
	cp := *s
	cp.StartingBalances = cloneSnapshot(s.StartingBalances)
	tx.state.shifts[s.ID] = &cp
	return nil
}

func (tx *memTx) UpdateShift(_ context.Context, s *models.Shift) error {
	if _, ok := tx.state.shifts[s.ID]; !ok {
		return ErrNotFound
	}
	cp := *s
	cp.StartingBalances = cloneSnapshot(s.StartingBalances)
	cp.EndingBalances = cloneSnapshot(s.EndingBalances)
	tx.state.shifts[s.ID] = &cp
	return nil
}

func (tx *memTx) ShiftProfit(_ context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range tx.state.transactions {
		if t.Kind == models.KindSell && t.ShiftID.Valid && t.ShiftID.UUID == shiftID && t.Profit.Valid {
			total = total.Add(t.Profit.Decimal)
		}
	}
	return total, nil
}

func (tx *memTx) ShiftExpenses(_ context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range tx.state.expenses {
		if e.ShiftID == shiftID {
			total = total.Add(e.AmountUSD)
		}
	}
	return total, nil
}

func (tx *memTx) CategoryExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := tx.state.categories[id]
	return ok, nil
}

func (tx *memTx) InsertExpense(_ context.Context, e *models.Expense) error {
	cp := *e
	tx.state.expenses[e.ID] = &cp
	return nil
}

func (tx *memTx) ExpenseForUpdate(_ context.Context, id uuid.UUID) (*models.Expense, error) {
	e, ok := tx.state.expenses[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (tx *memTx) UpdateExpense(_ context.Context, e *models.Expense) error {
	if _, ok := tx.state.expenses[e.ID]; !ok {
		return ErrNotFound
	}
	cp := *e
	tx.state.expenses[e.ID] = &cp
	return nil
}
