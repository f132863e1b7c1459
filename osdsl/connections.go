package osdsl

import (
	"context"
	"fmt"
	"sync"
)

// DefaultConnectionName is the registry name used when a request does not
// select a connection explicitly via Using.
const DefaultConnectionName = "default"

// Connection is the transport collaborator executing serialized requests.
// The reply is the raw response body; the DSL layer hands it to the response
// wrapper unmodified.
type Connection interface {
	UpdateByQuery(ctx context.Context, indices []string, body map[string]any, params map[string]any) (map[string]any, error)
}

// connectionRegistry is a process-wide, name-addressed set of connections.
// Requests resolve their connection by name at Execute time, so a name can be
// rebound between executions.
type connectionRegistry struct {
	mu          sync.RWMutex
	connections map[string]Connection
}

var registry = &connectionRegistry{connections: make(map[string]Connection)}

// AddConnection registers conn under the given name, replacing any previous
// registration. An empty name registers the default connection.
func AddConnection(name string, conn Connection) error {
	if conn == nil {
		return ErrNilConnectionSupplied
	}

	if name == "" {
		name = DefaultConnectionName
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	registry.connections[name] = conn

	return nil
}

// RemoveConnection drops the named connection from the registry.
// Returns ErrConnectionNotConfigured when the name is unknown.
func RemoveConnection(name string) error {
	if name == "" {
		name = DefaultConnectionName
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, found := registry.connections[name]; !found {
		return fmt.Errorf("%w: %q", ErrConnectionNotConfigured, name)
	}

	delete(registry.connections, name)

	return nil
}

// GetConnection returns the connection registered under the given name.
// An empty name resolves the default connection.
func GetConnection(name string) (Connection, error) {
	if name == "" {
		name = DefaultConnectionName
	}

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	conn, found := registry.connections[name]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrConnectionNotConfigured, name)
	}

	return conn, nil
}
