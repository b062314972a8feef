// Package toggle drives like and follow buttons.
//
// Each button has a committed state (the liked/following attribute) and a
// count. The committed state changes only after the blog API accepted the
// request. A button with a request in flight rejects further clicks.
package toggle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/looplab/fsm"
	"github.com/quillpress/quill/shared/domain"
	internal_errors "github.com/quillpress/quill/shared/errors"
	"github.com/quillpress/quill/shared/logger"
)

const (
	ResourcePosts = "posts"
	ResourceUsers = "users"

	RelationFavorite = "favorite"
	RelationFollow   = "follow"

	StateIdle    = "idle"
	StatePending = "pending"

	eventClick   = "click"
	eventConfirm = "confirm"
	eventFail    = "fail"
)

var (
	ErrInFlight      = errors.New("request already in flight")
	ErrUnknownButton = errors.New("unknown button")
)

// ErrSelfFollow mirrors the blog API's answer so the page shows the same text.
var ErrSelfFollow = &internal_errors.ErrorWithStatusCode{Message: "Cannot follow yourself", StatusCode: http.StatusBadRequest}

type Target struct {
	Resource string
	Relation string
	Id       int64
}

func Favorite(postId domain.PostId) Target {
	return Target{Resource: ResourcePosts, Relation: RelationFavorite, Id: postId}
}

func Follow(userId domain.UserId) Target {
	return Target{Resource: ResourceUsers, Relation: RelationFollow, Id: userId}
}

// Path is the blog API endpoint for the relation.
func (t Target) Path() string {
	return fmt.Sprintf("/api/%s/%d/%s", t.Resource, t.Id, t.Relation)
}

func (t Target) key() string {
	return fmt.Sprintf("%s/%d/%s", t.Resource, t.Id, t.Relation)
}

// CheckViewer refuses actions the API would reject for this viewer anyway.
func (t Target) CheckViewer(viewer *domain.User) error {
	if viewer != nil && t.Relation == RelationFollow && t.Id == viewer.Id {
		return ErrSelfFollow
	}
	return nil
}

type Labels struct {
	Off string
	On  string
}

func LabelsFor(relation string) Labels {
	if relation == RelationFollow {
		return Labels{Off: "Follow", On: "Following"}
	}
	return Labels{Off: "Like", On: "Liked"}
}

func (l Labels) For(active bool) string {
	if active {
		return l.On
	}
	return l.Off
}

// Requester performs the API call: POST to activate, DELETE to deactivate.
type Requester interface {
	Request(ctx context.Context, target Target, activate bool) error
}

type RequesterFunc func(ctx context.Context, target Target, activate bool) error

func (f RequesterFunc) Request(ctx context.Context, target Target, activate bool) error {
	return f(ctx, target, activate)
}

type View struct {
	Active  bool
	Count   int
	Label   string
	Pending bool
}

type snapshot struct {
	active bool
	count  int
}

type button struct {
	target    Target
	labels    Labels
	committed snapshot
	shown     *snapshot // optimistic display while pending
	sm        *fsm.FSM
}

func (b *button) view() View {
	s := b.committed
	if b.shown != nil {
		s = *b.shown
	}
	return View{
		Active:  s.active,
		Count:   s.count,
		Label:   b.labels.For(s.active),
		Pending: b.sm.Is(StatePending),
	}
}

func step(s snapshot) snapshot {
	if s.active {
		return snapshot{active: false, count: max(s.count-1, 0)}
	}
	return snapshot{active: true, count: s.count + 1}
}

type Toggler struct {
	mu         sync.Mutex
	buttons    map[string]*button
	optimistic bool
}

// New returns a Toggler. With optimistic set the displayed state flips on
// click and is rolled back if the request fails.
func New(optimistic bool) *Toggler {
	return &Toggler{buttons: make(map[string]*button), optimistic: optimistic}
}

// Register records the state the page rendered for target. It is ignored
// while a request for target is in flight.
func (t *Toggler) Register(target Target, active bool, count int) View {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buttons[target.key()]
	if !ok {
		b = &button{
			target: target,
			labels: LabelsFor(target.Relation),
			sm: fsm.NewFSM(
				StateIdle,
				fsm.Events{
					{Name: eventClick, Src: []string{StateIdle}, Dst: StatePending},
					{Name: eventConfirm, Src: []string{StatePending}, Dst: StateIdle},
					{Name: eventFail, Src: []string{StatePending}, Dst: StateIdle},
				},
				fsm.Callbacks{},
			),
		}
		t.buttons[target.key()] = b
	}
	if !b.sm.Is(StatePending) {
		b.committed = snapshot{active: active, count: max(count, 0)}
	}
	return b.view()
}

func (t *Toggler) View(target Target) (View, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buttons[target.key()]
	if !ok {
		return View{}, false
	}
	return b.view(), true
}

// Click toggles target through req. On success the committed state flips and
// the count moves by one. On failure nothing changes and the error is logged.
func (t *Toggler) Click(ctx context.Context, target Target, req Requester) (View, error) {
	t.mu.Lock()
	b, ok := t.buttons[target.key()]
	if !ok {
		t.mu.Unlock()
		return View{}, ErrUnknownButton
	}
	if err := b.sm.Event(context.Background(), eventClick); err != nil {
		v := b.view()
		t.mu.Unlock()
		return v, ErrInFlight
	}
	from := b.committed
	to := step(from)
	if t.optimistic {
		b.shown = &to
	}
	t.mu.Unlock()

	err := req.Request(ctx, target, to.active)

	t.mu.Lock()
	defer t.mu.Unlock()

	b.shown = nil
	if err != nil {
		t.transition(b, eventFail)
		logger.Log.Warn("toggle request failed",
			"target", target.Path(),
			"activate", to.active,
			"status", internal_errors.StatusCode(err),
			"error", err)
		return b.view(), fmt.Errorf("toggle %s: %w", target.Relation, err)
	}

	b.committed = to
	t.transition(b, eventConfirm)
	return b.view(), nil
}

// transition ignores the request context: a cancelled request must still
// take the button out of pending.
func (t *Toggler) transition(b *button, event string) {
	if err := b.sm.Event(context.Background(), event); err != nil {
		logger.Log.Error("toggle state transition", "target", b.target.Path(), "event", event, "error", err)
	}
}
