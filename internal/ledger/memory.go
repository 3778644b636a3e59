// Package ledger provides the in-memory implementation of the balance
// ledger the room orchestrator settles against. Durable persistence lives
// outside this repository; this implementation supplies the same atomic
// read-check-commit contract for simulation and tests.
package ledger

import (
	"fmt"
	"sync"

	"github.com/greenfelt/casino/internal/game"
)

// Transaction records one committed balance movement for audit.
type Transaction struct {
	Account string
	Delta   int
	Balance int
	Reason  string
}

// Memory is a thread-safe in-memory ledger. Every Debit is an atomic
// read-check-commit under one lock, so two concurrent bets can never both
// validate against a stale balance and overdraw an account.
type Memory struct {
	mu       sync.Mutex
	balances map[string]int
	history  []Transaction
}

// NewMemory creates an empty ledger.
func NewMemory() *Memory {
	return &Memory{balances: make(map[string]int)}
}

// CreateAccount registers an account with an opening balance. Existing
// accounts are left untouched.
func (m *Memory) CreateAccount(id string, balance int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[id]; !ok {
		m.balances[id] = balance
	}
}

// Balance returns the committed balance for an account.
func (m *Memory) Balance(id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.balances[id]
	if !ok {
		return 0, fmt.Errorf("unknown account %s", id)
	}
	return balance, nil
}

// Debit atomically withdraws amount and returns the new balance. It fails
// with ErrInsufficientFunds when the committed balance cannot cover the
// amount, leaving the account untouched.
func (m *Memory) Debit(id string, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.balances[id]
	if !ok {
		return 0, fmt.Errorf("unknown account %s", id)
	}
	if amount > balance {
		return balance, fmt.Errorf("%w: account %s has %d, needs %d", game.ErrInsufficientFunds, id, balance, amount)
	}
	balance -= amount
	m.balances[id] = balance
	m.history = append(m.history, Transaction{Account: id, Delta: -amount, Balance: balance, Reason: "bet"})
	return balance, nil
}

// Credit atomically deposits amount and returns the new balance.
func (m *Memory) Credit(id string, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.balances[id]
	if !ok {
		return 0, fmt.Errorf("unknown account %s", id)
	}
	balance += amount
	m.balances[id] = balance
	m.history = append(m.history, Transaction{Account: id, Delta: amount, Balance: balance, Reason: "payout"})
	return balance, nil
}

// Transactions returns a copy of the committed movement history.
func (m *Memory) Transactions() []Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Transaction, len(m.history))
	copy(out, m.history)
	return out
}
