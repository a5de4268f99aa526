package jackroute

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/jackroute/connect"
	"github.com/opd-ai/jackroute/interfaces"
	"github.com/opd-ai/jackroute/readiness"
	"github.com/opd-ai/jackroute/real"
	"github.com/opd-ai/jackroute/report"
	"github.com/opd-ai/jackroute/resolve"
	"github.com/opd-ai/jackroute/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	physIn  = interfaces.PortIsOutput | interfaces.PortIsPhysical | interfaces.PortIsTerminal
	physOut = interfaces.PortIsInput | interfaces.PortIsPhysical | interfaces.PortIsTerminal
)

type instantTime struct{}

func (instantTime) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

type countingActivator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingActivator) Activate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

// rocksmithGraph builds a PipeWire graph in which the game's ports only
// appear after a few polls.
func rocksmithGraph(appearAt int) *simulation.Graph {
	var g *simulation.Graph
	g = simulation.NewGraph("pw-Rocksmith2014-3",
		simulation.WithNormalizedLookup(),
		simulation.WithLookupHook(func(name string, count int) {
			if count == appearAt {
				g.AddPort("pw-Rocksmith2014-3:in_1", interfaces.PortIsInput)
				g.AddPort("pw-Rocksmith2014-3:in_2", interfaces.PortIsInput)
				g.AddPort("pw-Rocksmith2014-3:out_1", interfaces.PortIsOutput)
				g.AddPort("pw-Rocksmith2014-3:out_2", interfaces.PortIsOutput)
			}
		}),
	)
	g.AddPort("system:capture_1", physIn)
	g.AddPort("system:capture_2", physIn)
	g.AddPort("system:playback_1", physOut)
	g.AddPort("system:playback_2", physOut)
	return g
}

func testOptions(t *testing.T, env map[string]string) *Options {
	opts := NewOptions()
	opts.ReportPath = filepath.Join(t.TempDir(), report.DefaultPath)
	opts.Lookup = resolve.MapLookup(env)
	opts.TimeProvider = instantTime{}
	return opts
}

func TestMiddlewareEndToEnd(t *testing.T) {
	g := rocksmithGraph(3)
	underlying := &countingActivator{}
	opts := testOptions(t, nil)

	m := New(g, underlying, opts)
	require.NoError(t, m.Activate(context.Background()))

	assert.Equal(t, 1, underlying.calls)

	res := m.LastResult()
	require.NotNil(t, res)
	assert.True(t, res.PrefixMode)
	assert.Equal(t, "Rocksmith2014", res.SearchClient)
	assert.Equal(t, "Rocksmith2014:in_1", res.ReadyPort)
	assert.Equal(t, 3, res.ReadyAttempts)
	assert.NoError(t, res.ReadyErr)
	assert.Equal(t, []Stage{
		StageStarted, StageAwaitingTarget, StageEnumerating, StageResolving,
		StageConnecting, StageReporting, StageDone,
	}, res.Stages)

	require.Len(t, res.Outcomes, 4)
	assert.Equal(t, 4, res.Connected())
	assert.Equal(t, []simulation.Connection{
		{Source: "system:capture_1", Destination: "pw-Rocksmith2014-3:in_1"},
		{Source: "system:capture_2", Destination: "pw-Rocksmith2014-3:in_2"},
		{Source: "pw-Rocksmith2014-3:out_1", Destination: "system:playback_1"},
		{Source: "pw-Rocksmith2014-3:out_2", Destination: "system:playback_2"},
	}, g.Connections())

	data, err := os.ReadFile(opts.ReportPath)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Running on PipeWire, searching for client Rocksmith2014")
	assert.Contains(t, out, "Found 2 physical input ports and 2 physical output ports")
	assert.Contains(t, out, "Found 2 game input ports and 2 game output ports")
	assert.Contains(t, out, "Game JACK Input Ports:\nRocksmith2014:in_1\nRocksmith2014:in_2\n")
	assert.Contains(t, out, "Game JACK Output Ports:\nRocksmith2014:out_1\nRocksmith2014:out_2\n")
	assert.Contains(t, out, "Connected Rocksmith2014:out_2 -> system:playback_2")
	assert.NotContains(t, out, "-3:")
	assert.Equal(t, 1, strings.Count(out, "pw-"), "only the header names the raw client")
}

func TestMiddlewarePassesThroughUnderlyingError(t *testing.T) {
	boom := errors.New("activation failed")
	underlying := &countingActivator{err: boom}
	g := rocksmithGraph(1)

	m := New(g, underlying, testOptions(t, nil))
	err := m.Activate(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, underlying.calls)
	assert.Equal(t, 4, m.LastResult().Connected(), "routing runs even when activation fails")
}

func TestMiddlewareReportSinkUnavailable(t *testing.T) {
	underlying := &countingActivator{}
	g := rocksmithGraph(1)
	opts := testOptions(t, nil)
	opts.ReportPath = filepath.Join(t.TempDir(), "no", "such", "dir", "report.log")

	m := New(g, underlying, opts)
	err := m.Activate(context.Background())

	assert.ErrorIs(t, err, report.ErrSinkUnavailable)
	assert.Equal(t, 1, underlying.calls, "underlying activation still runs exactly once")
	assert.Nil(t, m.LastResult())
	assert.Empty(t, g.ConnectLog())
}

func TestRouterPartialOverride(t *testing.T) {
	g := rocksmithGraph(1)
	opts := testOptions(t, map[string]string{
		resolve.EnvPhysInputL: "system:capture_2",
	})

	res := NewRouter(g, opts).Run(context.Background(), nil)

	require.Len(t, res.Outcomes, 4)
	assert.Equal(t, connect.StatusConnected, res.Outcomes[0].Status)
	assert.Equal(t, "system:capture_2", res.Outcomes[0].Source.Name)
	assert.Equal(t, connect.StatusSkippedSourceUnset, res.Outcomes[1].Status)
	assert.Equal(t, connect.StatusConnected, res.Outcomes[2].Status)
	assert.Equal(t, connect.StatusConnected, res.Outcomes[3].Status)
}

func TestRouterFailuresDoNotStopRun(t *testing.T) {
	g := rocksmithGraph(1)
	opts := testOptions(t, map[string]string{
		resolve.EnvGameInL:  "Rocksmith2014:in_9",
		resolve.EnvGameOutL: "Rocksmith2014:out_1",
	})

	var sink recordingWriter
	res := NewRouter(g, opts).Run(context.Background(), &sink)

	assert.Equal(t, StageDone, res.Stages[len(res.Stages)-1])
	assert.Equal(t, connect.StatusFailed, res.Outcomes[0].Status)
	assert.Equal(t, "port not found: Rocksmith2014:in_9", res.Outcomes[0].Reason)
	assert.Equal(t, connect.StatusSkippedDestinationUnset, res.Outcomes[1].Status)
	assert.Equal(t, connect.StatusConnected, res.Outcomes[2].Status)
	assert.Equal(t, connect.StatusSkippedSourceUnset, res.Outcomes[3].Status)
	require.Len(t, sink.reports, 1)
	assert.Equal(t, res.ActivationID, sink.reports[0].ActivationID)
}

func TestRouterBoundedWaitStillRoutes(t *testing.T) {
	g := rocksmithGraph(1000)
	opts := testOptions(t, nil)
	opts.MaxWaitAttempts = 2

	res := NewRouter(g, opts).Run(context.Background(), nil)

	assert.ErrorIs(t, res.ReadyErr, readiness.ErrNotReady)
	assert.Equal(t, 2, res.ReadyAttempts)
	assert.Len(t, res.Stages, 7)
	require.Len(t, res.Outcomes, 4)
	assert.Equal(t, connect.StatusSkippedDestinationUnset, res.Outcomes[0].Status)
	assert.Equal(t, connect.StatusSkippedSourceUnset, res.Outcomes[2].Status)
}

func TestRouterPlainJack(t *testing.T) {
	g := simulation.NewGraph("Rocksmith2014")
	g.AddPort("system:capture_1", physIn)
	g.AddPort("system:playback_1", physOut)
	g.AddPort("Rocksmith2014:in_1", interfaces.PortIsInput)
	g.AddPort("Rocksmith2014:out_1", interfaces.PortIsOutput)

	res := NewRouter(g, testOptions(t, nil)).Run(context.Background(), nil)

	assert.False(t, res.PrefixMode)
	assert.Equal(t, "Rocksmith2014:in_1", res.ReadyPort)
	assert.Equal(t, 2, res.Connected())
	assert.Equal(t, connect.StatusSkippedSourceUnset, res.Outcomes[1].Status)
	assert.Equal(t, connect.StatusSkippedSourceUnset, res.Outcomes[3].Status)
}

func TestRouterRawNameOnlySimulation(t *testing.T) {
	g := simulation.NewGraph("pw-Rocksmith2014-3")
	g.AddPort("system:capture_1", physIn)
	g.AddPort("system:capture_2", physIn)
	g.AddPort("system:playback_1", physOut)
	g.AddPort("system:playback_2", physOut)
	g.AddPort("pw-Rocksmith2014-3:in_1", interfaces.PortIsInput)
	g.AddPort("pw-Rocksmith2014-3:in_2", interfaces.PortIsInput)
	g.AddPort("pw-Rocksmith2014-3:out_1", interfaces.PortIsOutput)
	g.AddPort("pw-Rocksmith2014-3:out_2", interfaces.PortIsOutput)
	opts := testOptions(t, nil)
	opts.MaxWaitAttempts = 5

	res := NewRouter(g, opts).Run(context.Background(), nil)

	assert.Equal(t, "Rocksmith2014:in_1", res.ReadyPort)
	assert.NoError(t, res.ReadyErr)
	assert.Equal(t, 1, res.ReadyAttempts)
	assert.Equal(t, 4, res.Connected())
	assert.Contains(t, g.Connections(), simulation.Connection{
		Source: "system:capture_1", Destination: "pw-Rocksmith2014-3:in_1",
	})
}

const pipewireLsp = `system:capture_1
	properties: output,physical,terminal,
system:capture_2
	properties: output,physical,terminal,
system:playback_1
	properties: input,physical,terminal,
system:playback_2
	properties: input,physical,terminal,
pw-Rocksmith2014-3:in_1
	properties: input,
pw-Rocksmith2014-3:in_2
	properties: input,
pw-Rocksmith2014-3:out_1
	properties: output,
pw-Rocksmith2014-3:out_2
	properties: output,
`

func TestRouterJackGraphWithoutAliases(t *testing.T) {
	g := real.NewJackGraph(&interfaces.GraphConfig{
		CommandTimeout: 1000,
		LspCommand:     "jack_lsp",
		ConnectCommand: "jack_connect",
		ClientName:     "pw-Rocksmith2014-3",
	})
	var connects [][]string
	g.SetRunner(func(ctx context.Context, name string, args ...string) (string, error) {
		if name == "jack_connect" {
			connects = append(connects, args)
			return "", nil
		}
		return pipewireLsp, nil
	})
	opts := testOptions(t, nil)
	opts.MaxWaitAttempts = 20

	res := NewRouter(g, opts).Run(context.Background(), nil)

	assert.NoError(t, res.ReadyErr)
	assert.Equal(t, 1, res.ReadyAttempts)
	assert.Equal(t, 4, res.Connected())
	assert.Equal(t, []string{"system:capture_1", "pw-Rocksmith2014-3:in_1"}, connects[0])
	assert.Equal(t, []string{"pw-Rocksmith2014-3:out_2", "system:playback_2"}, connects[3])
}

func TestRouterCustomReadyPort(t *testing.T) {
	g := rocksmithGraph(1)
	g.AddPort("Other:ready", interfaces.PortIsInput)
	opts := testOptions(t, nil)
	opts.ReadyPort = "Other:ready"

	res := NewRouter(g, opts).Run(context.Background(), nil)

	assert.Equal(t, "Other:ready", res.ReadyPort)
	assert.Equal(t, 1, res.ReadyAttempts)
}

type recordingWriter struct {
	reports []*report.Report
}

func (w *recordingWriter) Write(r *report.Report) error {
	w.reports = append(w.reports, r)
	return nil
}

type failingWriter struct{}

func (failingWriter) Write(*report.Report) error { return errors.New("disk full") }

func TestRouterReportWriteError(t *testing.T) {
	res := NewRouter(rocksmithGraph(1), testOptions(t, nil)).Run(context.Background(), failingWriter{})

	assert.EqualError(t, res.ReportErr, "disk full")
	assert.Equal(t, StageDone, res.Stages[len(res.Stages)-1])
}

func TestOptionsDefaults(t *testing.T) {
	var nilOpts *Options
	opts := nilOpts.withDefaults()
	assert.Equal(t, report.DefaultPath, opts.ReportPath)
	assert.Equal(t, readiness.DefaultPollInterval, opts.PollInterval)
	assert.Equal(t, Version, opts.Version)

	custom := &Options{ReportPath: "x.log", Version: "v9"}
	filled := custom.withDefaults()
	assert.Equal(t, "x.log", filled.ReportPath)
	assert.Equal(t, "v9", filled.Version)
	assert.Equal(t, readiness.DefaultPollInterval, filled.PollInterval)
	assert.Zero(t, custom.PollInterval, "caller's options are not modified")
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "awaiting-target", StageAwaitingTarget.String())
	assert.Equal(t, "done", StageDone.String())
	assert.Equal(t, "unknown", Stage(99).String())
}
