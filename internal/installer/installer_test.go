package installer

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImSingee/uvm/internal/index"
	"github.com/ImSingee/uvm/internal/index/indextest"
	"github.com/ImSingee/uvm/internal/resolver"
	"github.com/ImSingee/uvm/internal/unity"
)

const linux = unity.PlatformLinux

// fakeFetcher installs components into an in-memory probe.
type fakeFetcher struct {
	probe *indextest.Probe

	mu      sync.Mutex
	calls   []unity.Component
	failOn  map[unity.Component]error
	skipOn  map[unity.Component]bool
	onFetch func(c unity.Component)
}

func newFakeFetcher(p *indextest.Probe) *fakeFetcher {
	return &fakeFetcher{probe: p, failOn: map[unity.Component]error{}, skipOn: map[unity.Component]bool{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, req FetchRequest) error {
	f.mu.Lock()
	f.calls = append(f.calls, req.Component)
	err := f.failOn[req.Component]
	skip := f.skipOn[req.Component]
	hook := f.onFetch
	f.mu.Unlock()

	if hook != nil {
		hook(req.Component)
	}
	if err != nil {
		return err
	}
	if skip {
		return nil
	}
	return f.probe.Install(req.Destination, req.Version, req.Component)
}

func (f *fakeFetcher) Calls() []unity.Component {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]unity.Component(nil), f.calls...)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnTransition(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

func (r *recorder) statesOf(c unity.Component) []State {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []State
	for _, e := range r.events {
		if e.Component == c {
			out = append(out, e.State)
		}
	}
	return out
}

func setup(t *testing.T, p *indextest.Probe) *index.Index {
	t.Helper()

	idx, err := index.Scan(context.Background(), p, nil, linux)
	require.NoError(t, err)
	return idx
}

func plan(t *testing.T, idx *index.Index, version string, components ...unity.Component) *resolver.InstallPlan {
	t.Helper()

	p, err := resolver.New(nil).Plan(unity.MustParse(version), unity.NewComponentSet(components...), idx, linux, resolver.Options{AllowBaseOnly: true})
	require.NoError(t, err)
	return p
}

func TestApplyFreshInstall(t *testing.T) {
	p := indextest.NewProbe("/hub")
	idx := setup(t, p)
	f := newFakeFetcher(p)
	events := &recorder{}

	pl := plan(t, idx, "2020.3.38f1 (8f5fde82e2dc)", unity.Android)
	inst, err := New(p, p, f, WithObserver(events)).Apply(context.Background(), pl, idx)
	require.NoError(t, err)

	tt.AssertEqual(t, []unity.Component{unity.Editor, unity.Android, unity.AndroidSdkNdkTools, unity.AndroidOpenJdk}, f.Calls())
	assert.Equal(t, "/hub/2020.3.38f1", inst.Location)
	tt.AssertEqual(t, unity.NewComponentSet(unity.Editor, unity.Android, unity.AndroidSdkNdkTools, unity.AndroidOpenJdk), inst.Components)

	tt.AssertEqual(t, []State{StatePlanned, StateFetching, StateUnpacking, StateVerifying, StateRegistered}, events.statesOf(unity.Android))

	// the index is updated in place
	m, err := idx.FindByVersion(unity.MustParse("2020.3.38f1 (8f5fde82e2dc)"), index.RevisionExact)
	require.NoError(t, err)
	assert.True(t, m.Installation.Components.Has(unity.AndroidOpenJdk))

	// and the resolver now sees the request as satisfied
	again := plan(t, idx, "2020.3.38f1 (8f5fde82e2dc)", unity.Android)
	assert.Equal(t, resolver.AlreadySatisfied, again.Kind)
}

func TestApplyAlreadySatisfiedFetchesNothing(t *testing.T) {
	p := indextest.NewProbe()
	p.Add("/r1/2020.3.38f1", "2020.3.38f1 (8f5fde82e2dc)", unity.Android)
	idx := setup(t, p)
	f := newFakeFetcher(p)

	pl := plan(t, idx, "2020.3.38f1 (8f5fde82e2dc)", unity.Android)
	require.Equal(t, resolver.AlreadySatisfied, pl.Kind)

	inst, err := New(p, p, f).Apply(context.Background(), pl, idx)
	require.NoError(t, err)
	assert.Empty(t, f.Calls())
	assert.Equal(t, 0, p.Records())
	assert.True(t, inst.Equal(pl.Existing))
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	p := indextest.NewProbe("/hub")
	idx := setup(t, p)
	f := newFakeFetcher(p)
	cause := fmt.Errorf("connection reset")
	f.failOn[unity.AndroidSdkNdkTools] = cause

	pl := plan(t, idx, "2020.3.38f1", unity.Android, unity.WebGl)
	_, err := New(p, p, f).Apply(context.Background(), pl, idx)
	require.Error(t, err)

	var installErr *InstallError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, unity.AndroidSdkNdkTools, installErr.Component)
	assert.True(t, ee.Is(err, cause))

	// editor, android and webGl come before androidSdkNdkTools and stay registered
	tt.AssertEqual(t, []unity.Component{unity.Editor, unity.Android, unity.WebGl, unity.AndroidSdkNdkTools}, f.Calls())

	retry := plan(t, idx, "2020.3.38f1", unity.AndroidSdkNdkTools, unity.AndroidOpenJdk)
	assert.Equal(t, resolver.Install, retry.Kind)
	assert.Equal(t, "/hub/2020.3.38f1", retry.Destination)
	require.NotNil(t, retry.Existing)
	tt.AssertEqual(t, unity.NewComponentSet(unity.Editor, unity.Android, unity.WebGl), retry.Existing.Components)
	tt.AssertEqual(t, []unity.Component{unity.AndroidSdkNdkTools, unity.AndroidOpenJdk}, retry.Fetch)

	// retrying the same plan skips what is already there
	delete(f.failOn, unity.AndroidSdkNdkTools)
	_, err = New(p, p, f).Apply(context.Background(), pl, idx)
	require.NoError(t, err)
	tt.AssertEqual(t, []unity.Component{
		unity.Editor, unity.Android, unity.WebGl, unity.AndroidSdkNdkTools,
		unity.AndroidSdkNdkTools, unity.AndroidOpenJdk,
	}, f.Calls())
}

func TestApplyVerificationFailure(t *testing.T) {
	p := indextest.NewProbe("/hub")
	idx := setup(t, p)
	f := newFakeFetcher(p)
	f.skipOn[unity.Editor] = true

	pl := plan(t, idx, "2021.3.5f1")
	_, err := New(p, p, f).Apply(context.Background(), pl, idx)
	assert.True(t, ee.Is(err, ErrVerificationFailed))

	var installErr *InstallError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, unity.Editor, installErr.Component)
}

func TestApplyMarkerVerification(t *testing.T) {
	p := indextest.NewProbe("/hub")
	idx := setup(t, p)
	f := newFakeFetcher(p)
	f.skipOn[unity.WebGl] = true
	f.skipOn[unity.Mono] = true

	// mono has no marker directory so there is nothing to verify
	pl := plan(t, idx, "2021.3.5f1", unity.Mono)
	_, err := New(p, p, f).Apply(context.Background(), pl, idx)
	require.NoError(t, err)

	pl = plan(t, idx, "2021.3.5f1", unity.WebGl)
	_, err = New(p, p, f).Apply(context.Background(), pl, idx)
	assert.True(t, ee.Is(err, ErrVerificationFailed))
}

func TestApplyCancellation(t *testing.T) {
	p := indextest.NewProbe("/hub")
	idx := setup(t, p)
	f := newFakeFetcher(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.onFetch = func(c unity.Component) {
		if c == unity.Editor {
			cancel()
		}
	}

	pl := plan(t, idx, "2021.3.5f1", unity.WebGl)
	_, err := New(p, p, f).Apply(ctx, pl, idx)

	var installErr *InstallError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, unity.WebGl, installErr.Component)
	assert.ErrorIs(t, err, context.Canceled)

	inst, ok := idx.FindByLocation("/hub/2021.3.5f1")
	require.True(t, ok)
	tt.AssertEqual(t, unity.NewComponentSet(unity.Editor), inst.Components)
}

type unpackingFetcher struct {
	*fakeFetcher
	unpacked []unity.Component
}

func (u *unpackingFetcher) Unpack(_ context.Context, req FetchRequest) error {
	u.unpacked = append(u.unpacked, req.Component)
	return nil
}

func TestApplyCallsUnpacker(t *testing.T) {
	p := indextest.NewProbe("/hub")
	idx := setup(t, p)
	f := &unpackingFetcher{fakeFetcher: newFakeFetcher(p)}

	pl := plan(t, idx, "2021.3.5f1", unity.WebGl)
	_, err := New(p, p, f).Apply(context.Background(), pl, idx)
	require.NoError(t, err)
	tt.AssertEqual(t, []unity.Component{unity.Editor, unity.WebGl}, f.unpacked)
}

func TestStateString(t *testing.T) {
	tt.AssertEqual(t, "fetching", StateFetching.String())
	tt.AssertEqual(t, "invalid", State(42).String())
	assert.True(t, StateFailed.Done())
	assert.False(t, StateVerifying.Done())
}
