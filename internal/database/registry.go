package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrNoDriver is returned when no gateway is registered for a driver name.
var ErrNoDriver = errors.New("no driver")

// Registry dispatches Open to the gateway registered for the driver name.
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{gateways: make(map[string]Gateway)}
}

// Register makes g available under each of the given driver names.
func (r *Registry) Register(g Gateway, names ...string) {
	for _, name := range names {
		r.gateways[name] = g
	}
}

// Drivers lists the registered driver names.
func (r *Registry) Drivers() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open connects through the gateway registered for driver.
func (r *Registry) Open(ctx context.Context, driver, params string) (Conn, error) {
	g, ok := r.gateways[driver]
	if !ok {
		return nil, fmt.Errorf("%w for '%s'", ErrNoDriver, driver)
	}
	return g.Open(ctx, driver, params)
}
