package audio

import (
	"sync"
	"time"

	"github.com/deskclock/deskclock-go/pkg/ringer"
)

// Router sends the fallback tone to one output and every other ringtone to
// another, presenting both as a single ringer.Output.
type Router struct {
	fallback ringer.Output
	primary  ringer.Output

	mu     sync.Mutex
	next   ringer.Handle
	routes map[ringer.Handle]route
	failed func(ringer.Handle, error)
}

type route struct {
	out ringer.Output
	h   ringer.Handle
}

// NewRouter creates a router. primary may be nil, in which case every URI
// plays on fallback.
func NewRouter(fallback, primary ringer.Output) *Router {
	r := &Router{
		fallback: fallback,
		primary:  primary,
		routes:   make(map[ringer.Handle]route),
	}
	for _, out := range []ringer.Output{fallback, primary} {
		if fr, ok := out.(ringer.FailureReporter); ok {
			fr.OnFailure(func(inner ringer.Handle, err error) { r.innerFailed(out, inner, err) })
		}
	}
	return r
}

// OnFailure registers fn for playbacks that die on either output.
func (r *Router) OnFailure(fn func(ringer.Handle, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = fn
}

func (r *Router) innerFailed(out ringer.Output, inner ringer.Handle, err error) {
	r.mu.Lock()
	var (
		h     ringer.Handle
		found bool
	)
	for outer, rt := range r.routes {
		if rt.out == out && rt.h == inner {
			h, found = outer, true
			delete(r.routes, outer)
			break
		}
	}
	fn := r.failed
	r.mu.Unlock()

	if found && fn != nil {
		fn(h, err)
	}
}

func (r *Router) pick(uri string) ringer.Output {
	if uri == ringer.FallbackURI || r.primary == nil {
		return r.fallback
	}
	return r.primary
}

// Play holds the route table across the inner Play so a failure reported
// straight away still finds its route.
func (r *Router) Play(uri string, looping bool, volume float64) (ringer.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.pick(uri)
	inner, err := out.Play(uri, looping, volume)
	if err != nil {
		return 0, err
	}
	r.next++
	r.routes[r.next] = route{out: out, h: inner}
	return r.next, nil
}

func (r *Router) lookup(h ringer.Handle) (route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.routes[h]
	return rt, ok
}

func (r *Router) SetVolume(h ringer.Handle, volume float64) error {
	rt, ok := r.lookup(h)
	if !ok {
		return nil
	}
	return rt.out.SetVolume(rt.h, volume)
}

func (r *Router) Stop(h ringer.Handle) error {
	r.mu.Lock()
	rt, ok := r.routes[h]
	delete(r.routes, h)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return rt.out.Stop(rt.h)
}

func (r *Router) IsPlaying(h ringer.Handle) bool {
	rt, ok := r.lookup(h)
	return ok && rt.out.IsPlaying(rt.h)
}

func (r *Router) Duration(uri string) (time.Duration, error) {
	return r.pick(uri).Duration(uri)
}

var (
	_ ringer.Output          = (*Router)(nil)
	_ ringer.FailureReporter = (*Router)(nil)
)
