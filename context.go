package deploystand

import "github.com/aleti000/deploy-stand/pkg/kv"

// Context carries around data/structs needed for operations
type Context struct {
	kv kv.KV
}

// NewContext creates a Context from an established kv connection
func NewContext(k kv.KV) *Context {
	return &Context{
		kv: k,
	}
}

// IsKeyNotFound is a helper to determine if an error from the underlying kv
// is a key not found error
func (c *Context) IsKeyNotFound(err error) bool {
	return c.kv.IsKeyNotFound(err)
}
