package navigation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/abhisheknishant138/scope/pkg/appstate"
	"github.com/abhisheknishant138/scope/pkg/storage"
	"github.com/abhisheknishant138/scope/pkg/telemetry"
	"github.com/abhisheknishant138/scope/pkg/urlcodec"
	"github.com/abhisheknishant138/scope/pkg/viewstate"
)

// Router keeps history and the persistent store in step with the
// application state. Calls are serialized.
type Router struct {
	mu       sync.Mutex
	nav      Navigator
	loc      Location
	store    storage.Store
	logger   *slog.Logger
	recorder telemetry.Recorder
	tracer   trace.Tracer
}

// Option configures a Router.
type Option func(*Router)

// WithStore sets the store the encoded view state is mirrored into.
func WithStore(store storage.Store) Option {
	return func(r *Router) {
		r.store = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder telemetry.Recorder) Option {
	return func(r *Router) {
		r.recorder = recorder
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Router) {
		r.tracer = tracer
	}
}

// NewRouter creates a Router that reads the current location from loc and
// navigates with nav.
func NewRouter(nav Navigator, loc Location, opts ...Option) *Router {
	r := &Router{
		nav:      nav,
		loc:      loc,
		logger:   slog.Default(),
		recorder: telemetry.Nop{},
		tracer:   telemetry.Tracer(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "navigation")
	return r
}

// OnStateChange is called after every application state change. It derives
// the reduced view state of s, compares it with the state of the current
// location and, when they differ, persists the new encoding (if s allows it)
// and pushes or replaces the history entry without dispatching.
//
// A current location that does not decode is treated as the empty state.
// Store failures are logged and never prevent the navigation.
func (r *Router) OnStateChange(ctx context.Context, s *appstate.State) (cmd Command, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	ctx, span := telemetry.StartStateChange(ctx, r.tracer)
	defer func() {
		r.recorder.DecisionDuration(time.Since(start))
		telemetry.EndStateChange(span, cmd.Mode.String(), cmd.URL, err)
	}()

	next, err := appstate.URLState(s)
	if err != nil {
		return Command{}, err
	}

	current := r.loc.Current()
	prev, err := urlcodec.ParseLocation(current)
	if err != nil {
		r.logger.Warn("current location does not decode, treating it as empty",
			"location", current,
			"error", err)
		r.recorder.DecodeFailure()
		prev = map[string]any{}
	}

	cmd, err = Decide(viewstate.ViewState(prev), next)
	if err != nil {
		return Command{}, err
	}
	r.recorder.Navigation(cmd.Mode.String())
	if cmd.Mode == ModeNone {
		return cmd, nil
	}

	if r.store != nil && appstate.IsStoreViewStateEnabled(s) {
		werr := r.store.Set(ctx, StorageKey, cmd.URL)
		r.recorder.StoreWrite(werr)
		if werr != nil {
			r.logger.Error("persisting view state", "error", werr)
		}
	}

	if err := Apply(cmd, r.nav); err != nil {
		return cmd, err
	}
	r.logger.Debug("navigated", "mode", cmd.Mode.String(), "path", cmd.Path)
	return cmd, nil
}

// Restore builds the application state for route entry. The state carried
// by the current location wins; a location without restorable fields (empty,
// or carrying only fields outside the URL contract) falls back to the
// persisted view state when base allows storing it. The result is a merge
// over base.
func (r *Router) Restore(ctx context.Context, base *appstate.State) (*appstate.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.loc.Current()
	m, err := urlcodec.ParseLocation(current)
	if err != nil {
		r.recorder.DecodeFailure()
		return appstate.Restore(base, nil), err
	}
	vs := viewstate.Known(m)
	if len(vs) > 0 || r.store == nil || !appstate.IsStoreViewStateEnabled(base) {
		return appstate.Restore(base, vs), nil
	}

	stored, err := LoadStoredViewState(ctx, r.store)
	if err != nil {
		r.logger.Warn("stored view state unusable", "error", err)
	}
	return appstate.Restore(base, viewstate.Known(stored)), nil
}
