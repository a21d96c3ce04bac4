package token

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrNoHandler             = errors.New("token: no approve-and-call handler for spender")
	ErrInvalidAmount         = errors.New("token: amount must not be negative")
)

// ApproveAndCallHandler receives a forwarded payload after an approval
// has been recorded for the handler's address.
type ApproveAndCallHandler interface {
	HandleApproveAndCall(sender common.Address, data []byte) error
}

// Ledger is an in-process fungible-asset service with allowances and an
// approve-and-call relay hook. It stands in for the external currency
// collaborators at their interface boundary.
type Ledger struct {
	mu         sync.Mutex
	name       string
	symbol     string
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	handlers   map[common.Address]ApproveAndCallHandler
}

// NewLedger constructs an empty asset ledger.
func NewLedger(name, symbol string) *Ledger {
	return &Ledger{
		name:       name,
		symbol:     symbol,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
		handlers:   make(map[common.Address]ApproveAndCallHandler),
	}
}

// Name returns the asset name.
func (l *Ledger) Name() string { return l.name }

// Symbol returns the asset symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// RegisterHandler attaches the approve-and-call handler for a spender.
func (l *Ledger) RegisterHandler(spender common.Address, h ApproveAndCallHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[spender] = h
}

// Mint credits freshly issued units to an account.
func (l *Ledger) Mint(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, amount)
	return nil
}

// BalanceOf returns the current balance of an account.
func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal, ok := l.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Transfer moves units between accounts.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// Approve records a spending allowance for the spender.
func (l *Ledger) Approve(owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.approve(owner, spender, amount)
	return nil
}

// Allowance returns the remaining allowance from owner to spender.
func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if granted, ok := l.allowances[owner][spender]; ok {
		return new(big.Int).Set(granted)
	}
	return new(big.Int)
}

// TransferFrom moves units out of from's account, consuming spender's
// allowance.
func (l *Ledger) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	granted, ok := l.allowances[from][spender]
	if !ok || granted.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	granted.Sub(granted, amount)
	return nil
}

// ApproveAndCall records an allowance for the spender and forwards the
// tagged payload to the spender's registered handler in one step. The
// allowance is rolled back when the handler rejects the payload.
func (l *Ledger) ApproveAndCall(caller, spender common.Address, amount *big.Int, data []byte) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	handler, ok := l.handlers[spender]
	if !ok {
		l.mu.Unlock()
		return ErrNoHandler
	}
	var prev *big.Int
	if granted, exists := l.allowances[caller][spender]; exists {
		prev = new(big.Int).Set(granted)
	}
	l.approve(caller, spender, amount)
	// The handler re-enters the ledger through TransferFrom; the lock
	// must not be held across the call.
	l.mu.Unlock()

	if err := handler.HandleApproveAndCall(caller, data); err != nil {
		l.mu.Lock()
		if prev != nil {
			l.approve(caller, spender, prev)
		} else {
			delete(l.allowances[caller], spender)
		}
		l.mu.Unlock()
		return err
	}
	return nil
}

func (l *Ledger) approve(owner, spender common.Address, amount *big.Int) {
	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[common.Address]*big.Int)
	}
	l.allowances[owner][spender] = new(big.Int).Set(amount)
}

func (l *Ledger) credit(to common.Address, amount *big.Int) {
	if bal, ok := l.balances[to]; ok {
		bal.Add(bal, amount)
		return
	}
	l.balances[to] = new(big.Int).Set(amount)
}

func (l *Ledger) move(from, to common.Address, amount *big.Int) error {
	bal, ok := l.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	l.credit(to, amount)
	return nil
}
