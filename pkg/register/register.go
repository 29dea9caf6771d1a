// Package register collects init-time hooks so stores can attach themselves
// to a provider without the provider importing every store file.
package register

import "sync"

type registry struct {
	handlers map[any][]any
	mu       sync.RWMutex
}

var global = &registry{handlers: make(map[any][]any)}

type Handler[T any] func(T)

func RegisterFunc[T any](key any, handler Handler[T]) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.handlers[key] = append(global.handlers[key], handler)
}

func ResolveFuncHandlers[T any](key any) []Handler[T] {
	global.mu.RLock()
	defer global.mu.RUnlock()

	var result []Handler[T]
	for _, v := range global.handlers[key] {
		if h, ok := v.(Handler[T]); ok {
			result = append(result, h)
		}
	}
	return result
}
