package staking

import "github.com/ethereum/go-ethereum/common"

// Registry tracks the bot whitelist and the subset of whitelisted
// accounts that opted into borrowing. Registered is always a subset of
// Whitelisted.
type Registry struct {
	Whitelisted map[common.Address]bool `json:"whitelisted"`
	Registered  map[common.Address]bool `json:"registered"`
}

// NewRegistry returns an empty bot registry.
func NewRegistry() *Registry {
	return &Registry{
		Whitelisted: make(map[common.Address]bool),
		Registered:  make(map[common.Address]bool),
	}
}

// Clone returns a deep copy of the registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	out := NewRegistry()
	for addr := range r.Whitelisted {
		out.Whitelisted[addr] = true
	}
	for addr := range r.Registered {
		out.Registered[addr] = true
	}
	return out
}

// IsBot reports whether the account is whitelisted.
func (r *Registry) IsBot(addr common.Address) bool {
	return r != nil && r.Whitelisted[addr]
}

// IsRegistered reports whether the account completed self-registration.
func (r *Registry) IsRegistered(addr common.Address) bool {
	return r != nil && r.Registered[addr]
}

func (r *Registry) add(addr common.Address) error {
	if r.Whitelisted[addr] {
		return errBotExists
	}
	r.Whitelisted[addr] = true
	return nil
}

func (r *Registry) remove(addr common.Address) error {
	if !r.Whitelisted[addr] {
		return errNotABot
	}
	delete(r.Whitelisted, addr)
	// Removal revokes a completed registration as well.
	delete(r.Registered, addr)
	return nil
}

func (r *Registry) register(addr common.Address) error {
	if !r.Whitelisted[addr] {
		return errBotNotWhitelisted
	}
	r.Registered[addr] = true
	return nil
}
