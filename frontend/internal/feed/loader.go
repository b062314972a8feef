// Package feed implements the pagination controller behind infinite scroll.
//
// A Loader walks pages 1, 2, 3... of one list, posts or comments. It is
// single-flight: a request arriving while a page is loading is dropped, not
// queued. An empty page means the list is exhausted and no further requests
// are made.
package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
	"github.com/quillpress/quill/shared/logger"
)

const DefaultThreshold = 500

const (
	StateIdle      = "idle"
	StateLoading   = "loading"
	StateExhausted = "exhausted"

	eventLoad    = "load"
	eventLoaded  = "loaded"
	eventExhaust = "exhaust"
	eventFail    = "fail"
)

// Viewport is the scroll geometry reported by the page, in CSS pixels.
type Viewport struct {
	ScrollY        int
	Height         int
	DocumentHeight int
}

// NearBottom reports whether the bottom of the viewport is within threshold
// pixels of the end of the document.
func (v Viewport) NearBottom(threshold int) bool {
	return v.ScrollY+v.Height >= v.DocumentHeight-threshold
}

type Fetcher[T any] interface {
	FetchPage(ctx context.Context, page int) ([]T, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[T any] func(ctx context.Context, page int) ([]T, error)

func (f FetcherFunc[T]) FetchPage(ctx context.Context, page int) ([]T, error) {
	return f(ctx, page)
}

type Status int

const (
	Loaded Status = iota
	NotNearBottom
	Busy
	Exhausted
	Failed
)

func (s Status) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case NotNearBottom:
		return "not_near_bottom"
	case Busy:
		return "busy"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

type Result[T any] struct {
	Status Status
	Page   int
	Items  []T
}

type Loader[T any] struct {
	Key       string
	threshold int

	mu   sync.RWMutex
	page int // last successfully loaded page, 0 before the first one
	sm   *fsm.FSM
}

func NewLoader[T any](key string, threshold int) *Loader[T] {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Loader[T]{
		Key:       key,
		threshold: threshold,
		sm: fsm.NewFSM(
			StateIdle,
			fsm.Events{
				{Name: eventLoad, Src: []string{StateIdle}, Dst: StateLoading},
				{Name: eventLoaded, Src: []string{StateLoading}, Dst: StateIdle},
				{Name: eventExhaust, Src: []string{StateLoading}, Dst: StateExhausted},
				{Name: eventFail, Src: []string{StateLoading}, Dst: StateIdle},
			},
			fsm.Callbacks{},
		),
	}
}

func (l *Loader[T]) Page() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.page
}

func (l *Loader[T]) HasMore() bool { return !l.sm.Is(StateExhausted) }

func (l *Loader[T]) Loading() bool { return l.sm.Is(StateLoading) }

func (l *Loader[T]) State() string { return l.sm.Current() }

// OnScroll loads the next page only when the viewport is near the bottom.
func (l *Loader[T]) OnScroll(ctx context.Context, vp Viewport, fetcher Fetcher[T]) (Result[T], error) {
	if !vp.NearBottom(l.threshold) {
		return Result[T]{Status: NotNearBottom, Page: l.Page()}, nil
	}
	return l.Next(ctx, fetcher)
}

// Next loads the page after the last loaded one.
func (l *Loader[T]) Next(ctx context.Context, fetcher Fetcher[T]) (Result[T], error) {
	if err := l.sm.Event(context.Background(), eventLoad); err != nil {
		if l.sm.Is(StateExhausted) {
			return Result[T]{Status: Exhausted, Page: l.Page()}, nil
		}
		return Result[T]{Status: Busy, Page: l.Page()}, nil
	}

	page := l.Page() + 1
	items, err := fetcher.FetchPage(ctx, page)

	if err != nil {
		l.transition(eventFail)
		return Result[T]{Status: Failed, Page: l.Page()}, fmt.Errorf("loading page %d of %s: %w", page, l.Key, err)
	}

	if len(items) == 0 {
		l.transition(eventExhaust)
		logger.Log.Debug("feed exhausted", "list", l.Key, "page", page)
		return Result[T]{Status: Exhausted, Page: l.Page()}, nil
	}

	l.mu.Lock()
	l.page = page
	l.mu.Unlock()
	l.transition(eventLoaded)

	return Result[T]{Status: Loaded, Page: page, Items: items}, nil
}

// transition runs detached from the request context so that a cancelled
// request cannot leave the loader stuck in loading.
func (l *Loader[T]) transition(event string) {
	if err := l.sm.Event(context.Background(), event); err != nil {
		logger.Log.Error("feed state transition", "list", l.Key, "event", event, "state", l.sm.Current(), "error", err)
	}
}
