package lcd

import (
	"context"
	"sync"

	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/tx"
)

// Router dispatches LCD calls to a per-chain Client, creating clients lazily
// from the chain registry. All clients share one rate limiter keyed by chain.
type Router struct {
	registry chain.Registry
	opts     ClientOptions

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRouter creates a router over registry. opts.BaseURL is ignored.
func NewRouter(registry chain.Registry, opts *ClientOptions) *Router {
	r := &Router{registry: registry, clients: make(map[string]*Client)}
	if opts != nil {
		r.opts = *opts
		r.opts.BaseURL = ""
	}
	if r.opts.RateLimiter == nil {
		r.opts.RateLimiter = DefaultRateLimiter()
	}
	return r
}

// Client returns the client for chainID.
func (r *Router) Client(chainID string) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[chainID]; ok {
		return c, nil
	}

	info, err := r.registry.Lookup(chainID)
	if err != nil {
		return nil, err
	}
	opts := r.opts
	c, err := NewClient(info, &opts)
	if err != nil {
		return nil, err
	}
	r.clients[chainID] = c
	return c, nil
}

// FetchAccount reads account state on chainID.
func (r *Router) FetchAccount(ctx context.Context, chainID, address string) (*tx.AccountInfo, error) {
	c, err := r.Client(chainID)
	if err != nil {
		return nil, err
	}
	return c.FetchAccount(ctx, address)
}

// Create builds an unsigned transaction on opts.ChainID.
func (r *Router) Create(ctx context.Context, signers []tx.Signer, opts *tx.Options) (*tx.UnsignedTx, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c, err := r.Client(opts.ChainID)
	if err != nil {
		return nil, err
	}
	return c.Create(ctx, signers, opts)
}

// BroadcastSync broadcasts signed on chainID.
func (r *Router) BroadcastSync(ctx context.Context, signed *tx.SignedTx, chainID string) (*tx.BroadcastResult, error) {
	c, err := r.Client(chainID)
	if err != nil {
		return nil, err
	}
	return c.BroadcastSync(ctx, signed)
}
