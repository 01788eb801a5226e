// infrastructure/capability_registry.go
package infrastructure

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vitovidale/video-recognition-service/domain"
)

// CapabilityProvider looks a capability up at call time. Returning (nil, nil)
// means the capability is absent; an error means it could not be reached.
type CapabilityProvider func() (any, error)

// CapabilityRegistry resolves capabilities through registered providers.
// Nothing is cached: every Resolve calls the provider again.
type CapabilityRegistry struct {
	mu          sync.RWMutex
	providers   map[domain.CapabilityName]CapabilityProvider
	unreachable map[domain.CapabilityName]*atomic.Bool
}

func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{
		providers:   make(map[domain.CapabilityName]CapabilityProvider),
		unreachable: make(map[domain.CapabilityName]*atomic.Bool),
	}
}

// Register installs provider for name, replacing any earlier one.
func (r *CapabilityRegistry) Register(name domain.CapabilityName, provider CapabilityProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
	if _, ok := r.unreachable[name]; !ok {
		r.unreachable[name] = new(atomic.Bool)
	}
}

// RegisterValue installs a capability that is always available.
func (r *CapabilityRegistry) RegisterValue(name domain.CapabilityName, capability any) {
	r.Register(name, func() (any, error) { return capability, nil })
}

func (r *CapabilityRegistry) Resolve(name domain.CapabilityName) domain.Resolution {
	r.mu.RLock()
	provider, ok := r.providers[name]
	warned := r.unreachable[name]
	r.mu.RUnlock()

	res := domain.Resolution{Name: name, Status: domain.StatusAbsent}
	if !ok || provider == nil {
		return res
	}

	capability, err := callProvider(provider)
	switch {
	case err != nil:
		res.Status = domain.StatusUnreachable
		res.Err = err
		res.FirstUnreachable = warned.CompareAndSwap(false, true)
	case capability != nil:
		res.Status = domain.StatusAvailable
		res.Capability = capability
	}
	return res
}

func callProvider(provider CapabilityProvider) (capability any, err error) {
	defer func() {
		if r := recover(); r != nil {
			capability, err = nil, fmt.Errorf("capability lookup panicked: %v", r)
		}
	}()
	return provider()
}
