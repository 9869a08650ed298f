// Package module keeps the ports each mounted module exposes, keyed by module name
package module

import "sync"

var (
	mu    sync.RWMutex
	ports = map[string]any{}
)

// Register stores the ports of module name, replacing earlier ones
func Register(name string, p any) {
	mu.Lock()
	defer mu.Unlock()
	ports[name] = p
}

// PortsAs returns the ports of module name as T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := ports[name].(T)
	return p, ok
}

// Reset forgets every module; tests call it in cleanup
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ports = map[string]any{}
}
