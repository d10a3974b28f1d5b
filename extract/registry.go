package extract

import (
	"sync"

	"github.com/poiesic/docuchat/core"
)

// Registry maps routes to format adapters. The zero value is empty;
// NewRegistry returns one pre-populated with the built-in adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[core.Route]Adapter
}

// NewRegistry creates a registry with the built-in adapters registered:
// PDF, text, and spreadsheet extraction.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[core.Route]Adapter)}
	r.Register(core.RoutePDF, NewPDFAdapter())
	r.Register(core.RouteText, NewTextAdapter())
	r.Register(core.RouteExcel, NewExcelAdapter())
	r.Register(core.RouteDocx, NewDocxAdapter())
	return r
}

// Register installs an adapter for a route, replacing any existing one.
// This is how embedding applications add formats the built-ins don't
// cover, such as a vision-backed image adapter.
func (r *Registry) Register(route core.Route, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.adapters == nil {
		r.adapters = make(map[core.Route]Adapter)
	}
	r.adapters[route] = adapter
}

// For returns the adapter registered for a route.
func (r *Registry) For(route core.Route) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[route]
	return adapter, ok
}
