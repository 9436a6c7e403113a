package search

import (
	"context"
	"sync/atomic"

	"github.com/siherrmann/catalog/model"
)

// CapabilityCache holds the result of the first successful capability probe.
// It is never invalidated, so an extension installed or dropped while the
// process runs is only noticed after a restart. Concurrent first calls may
// each probe; the last one to finish wins.
type CapabilityCache struct {
	state atomic.Pointer[model.CapabilityState]
}

// processCapabilities is shared by every resolver in the process.
var processCapabilities = &CapabilityCache{}

// Get returns the cached state or probes the store. Failed probes are not cached.
func (c *CapabilityCache) Get(ctx context.Context, prober interface {
	ProbeCapabilities(ctx context.Context) (model.CapabilityState, error)
}) (model.CapabilityState, error) {
	if state := c.state.Load(); state != nil {
		return *state, nil
	}

	state, err := prober.ProbeCapabilities(ctx)
	if err != nil {
		return model.CapabilityState{}, err
	}
	c.state.Store(&state)

	return state, nil
}

// Cached returns the cached state, if any.
func (c *CapabilityCache) Cached() (model.CapabilityState, bool) {
	state := c.state.Load()
	if state == nil {
		return model.CapabilityState{}, false
	}
	return *state, true
}
