package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImSingee/uvm/internal/installer"
	"github.com/ImSingee/uvm/internal/unity"
)

func TestOnTransition(t *testing.T) {
	m := New()

	clock := time.Unix(1000, 0)
	m.now = func() time.Time { return clock }

	ev := func(c unity.Component, s installer.State) installer.Event {
		return installer.Event{RunID: "r", Component: c, State: s}
	}

	m.OnTransition(ev(unity.Android, installer.StatePlanned))
	m.OnTransition(ev(unity.Android, installer.StateFetching))
	clock = clock.Add(30 * time.Second)
	m.OnTransition(ev(unity.Android, installer.StateRegistered))

	m.OnTransition(ev(unity.WebGl, installer.StateFetching))
	m.OnTransition(ev(unity.WebGl, installer.StateFailed))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("android", "fetching")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Installed.WithLabelValues("android")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Installed.WithLabelValues("webGl")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("webGl")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
	assert.Empty(t, m.started)
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.ObserveScan(3)
	m.OnTransition(installer.Event{RunID: "r", Component: unity.Editor, State: installer.StateRegistered})

	filename := filepath.Join(t.TempDir(), "uvm.prom")
	require.NoError(t, m.WriteToTextfile(filename))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), "uvm_index_installations 3")
	assert.Contains(t, string(data), `uvm_install_components_total{component="editor"} 1`)
}
