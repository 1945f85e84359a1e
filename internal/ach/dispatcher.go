package ach

import (
	"context"
	"fmt"
	"time"

	"github.com/closingdesk/commission-backend/pkg/enums"
)

// Dispatcher routes requests to the provider registered under a name.
type Dispatcher struct {
	providers map[enums.ACHProvider]Provider
}

// NewDispatcher registers providers by their Name. A later provider replaces an earlier one.
func NewDispatcher(providers ...Provider) *Dispatcher {
	d := &Dispatcher{providers: make(map[enums.ACHProvider]Provider, len(providers))}
	for _, p := range providers {
		if p == nil {
			continue
		}
		d.providers[p.Name()] = p
	}
	return d
}

// NewSimulatedDispatcher registers the mock, stripe, plaid and dwolla simulations.
// When only is non-empty, providers outside it are left unregistered.
func NewSimulatedDispatcher(now func() time.Time, only ...enums.ACHProvider) *Dispatcher {
	all := []Provider{
		NewMockProvider(now),
		NewStripeProvider(now),
		NewPlaidProvider(now),
		NewDwollaProvider(now),
	}
	if len(only) == 0 {
		return NewDispatcher(all...)
	}
	enabled := make(map[enums.ACHProvider]bool, len(only))
	for _, name := range only {
		enabled[name] = true
	}
	var selected []Provider
	for _, p := range all {
		if enabled[p.Name()] {
			selected = append(selected, p)
		}
	}
	return NewDispatcher(selected...)
}

// Supports reports whether a provider is registered under name.
func (d *Dispatcher) Supports(name enums.ACHProvider) bool {
	if d == nil {
		return false
	}
	_, ok := d.providers[name]
	return ok
}

// Process sends req through the named provider.
func (d *Dispatcher) Process(ctx context.Context, name enums.ACHProvider, req Request) (*Result, error) {
	if !d.Supports(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}
	return d.providers[name].Process(ctx, req)
}
