// Package kv abstracts the distributed key value store holding all
// persistent state. The only backend is consul.
package kv

// Value is a stored value along with the index it was last modified at.
// The index feeds the atomic operations.
type Value struct {
	Data  []byte
	Index uint64
}

// KV is the interface for distributed key value store interaction
type KV interface {
	Delete(string, bool) error
	Get(string) (Value, error)
	GetAll(string) (map[string]Value, error)
	Keys(string) ([]string, error)
	Set(string, string) error

	// Atomic operations
	// Update will set key=value while ensuring that newer values are not clobbered
	Update(string, Value) (uint64, error)
	// Remove will delete key only if it has not been modified since index
	Remove(string, uint64) error

	// IsKeyNotFound is a helper to determine if the error is a key not found error
	IsKeyNotFound(error) bool

	// Ping verifies communication with the cluster
	Ping() error
}

// New returns a KV connected to the consul agent at addr. An empty addr
// uses the default agent address, which may be influenced by the
// environment.
func New(addr string) (KV, error) {
	return newConsul(addr)
}
