package token

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrTokenExists  = errors.New("nft: token already minted")
	ErrUnknownToken = errors.New("nft: unknown token")
	ErrNotTokenOwner = errors.New("nft: not token owner")
)

// Collection is the position-ownership registry: ids are minted once,
// transferable, and queryable. It holds no accounting state; the staking
// ledger keeps a non-owning back-reference through the id.
type Collection struct {
	mu     sync.Mutex
	name   string
	symbol string
	uri    string
	owners map[string]common.Address
}

// NewCollection constructs an empty ownership registry with cosmetic
// metadata.
func NewCollection(name, symbol, uri string) *Collection {
	return &Collection{
		name:   name,
		symbol: symbol,
		uri:    uri,
		owners: make(map[string]common.Address),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Symbol returns the collection symbol.
func (c *Collection) Symbol() string { return c.symbol }

// URI returns the collection metadata location.
func (c *Collection) URI() string { return c.uri }

// Mint assigns a fresh id to an owner. Re-minting an id fails.
func (c *Collection) Mint(owner common.Address, id *big.Int) error {
	if id == nil {
		return ErrUnknownToken
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := id.String()
	if _, exists := c.owners[key]; exists {
		return ErrTokenExists
	}
	c.owners[key] = owner
	return nil
}

// OwnerOf returns the current owner of an id.
func (c *Collection) OwnerOf(id *big.Int) (common.Address, error) {
	if id == nil {
		return common.Address{}, ErrUnknownToken
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, ok := c.owners[id.String()]
	if !ok {
		return common.Address{}, ErrUnknownToken
	}
	return owner, nil
}

// Transfer moves ownership of an id. Only the current owner may move it;
// the accounting record behind the id is unaffected.
func (c *Collection) Transfer(from, to common.Address, id *big.Int) error {
	if id == nil {
		return ErrUnknownToken
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := id.String()
	owner, ok := c.owners[key]
	if !ok {
		return ErrUnknownToken
	}
	if owner != from {
		return ErrNotTokenOwner
	}
	c.owners[key] = to
	return nil
}
