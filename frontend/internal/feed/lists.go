package feed

import "sync"

// Lists holds one independent Loader per list shown to a session, e.g. the
// home feed and a category page open in two tabs.
type Lists[T any] struct {
	mu        sync.Mutex
	threshold int
	loaders   map[string]*Loader[T]
}

func NewLists[T any](threshold int) *Lists[T] {
	return &Lists[T]{threshold: threshold, loaders: make(map[string]*Loader[T])}
}

// Get returns the loader for key, creating a fresh one if needed.
func (ls *Lists[T]) Get(key string) *Loader[T] {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	l, ok := ls.loaders[key]
	if !ok {
		l = NewLoader[T](key, ls.threshold)
		ls.loaders[key] = l
	}
	return l
}

// Reset replaces the loader for key with a fresh one starting before page 1.
// Called on a full page load of the list.
func (ls *Lists[T]) Reset(key string) *Loader[T] {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	l := NewLoader[T](key, ls.threshold)
	ls.loaders[key] = l
	return l
}
