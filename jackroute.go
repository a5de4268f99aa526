package jackroute

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/opd-ai/jackroute/catalog"
	"github.com/opd-ai/jackroute/connect"
	"github.com/opd-ai/jackroute/interfaces"
	"github.com/opd-ai/jackroute/names"
	"github.com/opd-ai/jackroute/readiness"
	"github.com/opd-ai/jackroute/report"
	"github.com/opd-ai/jackroute/resolve"
	"github.com/sirupsen/logrus"
)

// ReportWriter receives the finished report of an activation.
// *report.Sink satisfies it.
type ReportWriter interface {
	Write(r *report.Report) error
}

// Result describes one completed activation.
type Result struct {
	ActivationID string
	ClientName   string
	// SearchClient is the normalized client name ports were matched against.
	SearchClient string
	PrefixMode   bool

	ReadyPort     string
	ReadyAttempts int
	ReadyErr      error

	Overrides      resolve.OverrideSet
	Snapshot       *catalog.Snapshot
	EnumerationErr error
	Resolution     resolve.Resolution
	Outcomes       []connect.Outcome
	ReportErr      error

	// Stages lists every stage entered, in order.
	Stages []Stage
}

// Connected counts the attempts that succeeded.
func (r *Result) Connected() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == connect.StatusConnected {
			n++
		}
	}
	return n
}

// Report builds the diagnostic report for the result.
func (r *Result) Report(version string) *report.Report {
	return &report.Report{
		Version:      version,
		ClientName:   r.ClientName,
		ActivationID: r.ActivationID,
		PrefixMode:   r.PrefixMode,
		SearchClient: r.SearchClient,
		Readiness: report.Readiness{
			Port:     r.ReadyPort,
			Attempts: r.ReadyAttempts,
			Err:      r.ReadyErr,
		},
		Outcomes:       r.Outcomes,
		Overrides:      r.Overrides,
		Snapshot:       r.Snapshot,
		EnumerationErr: r.EnumerationErr,
	}
}

// Router runs the routing sequence for one client:
// wait for the target, enumerate, resolve, connect, report.
type Router struct {
	graph   interfaces.IGraphServer
	options *Options
}

// NewRouter creates a router. A nil opts uses NewOptions.
func NewRouter(graph interfaces.IGraphServer, opts *Options) *Router {
	return &Router{graph: graph, options: opts.withDefaults()}
}

// Run performs one activation's routing and hands the report to w, which
// may be nil. Routing problems are recorded in the result, never returned:
// the only unbounded step is the readiness wait.
func (r *Router) Run(ctx context.Context, w ReportWriter) *Result {
	res := &Result{ActivationID: uuid.NewString()}
	enter := func(s Stage) {
		res.Stages = append(res.Stages, s)
		logrus.WithFields(logrus.Fields{
			"function":      "Router.Run",
			"activation_id": res.ActivationID,
			"stage":         s.String(),
		}).Debug("Entering stage")
	}

	enter(StageStarted)
	res.ClientName = r.graph.ClientName()
	normalizer := names.Detect(res.ClientName)
	res.PrefixMode = normalizer.PrefixMode()
	res.SearchClient = normalizer.NormalizeClient(res.ClientName)
	res.Overrides = resolve.ReadOverrides(r.options.Lookup)

	logrus.WithFields(logrus.Fields{
		"function":      "Router.Run",
		"activation_id": res.ActivationID,
		"client":        res.ClientName,
		"search_client": res.SearchClient,
		"prefix_mode":   res.PrefixMode,
	}).Info("Starting routing")

	cat := catalog.New(r.graph, normalizer)

	enter(StageAwaitingTarget)
	res.ReadyPort = r.readyPort(res.SearchClient)
	waiter := readiness.NewWaiter(r.graph,
		readiness.WithPollInterval(r.options.PollInterval),
		readiness.WithMaxAttempts(r.options.MaxWaitAttempts),
		readiness.WithTimeProvider(r.options.TimeProvider),
		readiness.WithNormalizer(cat.Normalizer()),
	)
	res.ReadyAttempts, res.ReadyErr = waiter.Await(ctx, res.ReadyPort)

	enter(StageEnumerating)
	res.Snapshot, res.EnumerationErr = cat.Take(ctx, res.ClientName)
	if res.EnumerationErr != nil {
		logrus.WithFields(logrus.Fields{
			"function":      "Router.Run",
			"activation_id": res.ActivationID,
			"error":         res.EnumerationErr.Error(),
		}).Warn("Port enumeration incomplete")
	}

	enter(StageResolving)
	res.Resolution = resolve.Resolve(res.Overrides, res.Snapshot)
	for _, role := range resolve.Roles {
		if pair := res.Resolution.Pair(role); !pair.Left.IsSet() || !pair.Right.IsSet() {
			logrus.WithFields(logrus.Fields{
				"function":      "Router.Run",
				"activation_id": res.ActivationID,
				"role":          role.String(),
				"left":          pair.Left.Name,
				"right":         pair.Right.Name,
			}).Warn("Role only partly resolved")
		}
	}

	enter(StageConnecting)
	res.Outcomes = connect.NewPlanner(r.graph).ConnectAll(ctx, res.Resolution)

	enter(StageReporting)
	if w != nil {
		if err := w.Write(res.Report(r.options.Version)); err != nil {
			res.ReportErr = err
			logrus.WithFields(logrus.Fields{
				"function":      "Router.Run",
				"activation_id": res.ActivationID,
				"error":         err.Error(),
			}).Error("Failed to write report")
		}
	}

	enter(StageDone)
	logrus.WithFields(logrus.Fields{
		"function":      "Router.Run",
		"activation_id": res.ActivationID,
		"connected":     res.Connected(),
		"attempts":      len(res.Outcomes),
	}).Info("Routing finished")

	return res
}

func (r *Router) readyPort(client string) string {
	if r.options.ReadyPort != "" {
		return r.options.ReadyPort
	}
	return names.Join(client, DefaultReadyPortName)
}

// Middleware wraps a client's activation with automatic routing. It is
// itself an interfaces.IActivator, so it can stand in wherever the
// underlying activation was called.
type Middleware struct {
	graph      interfaces.IGraphServer
	underlying interfaces.IActivator
	options    *Options

	mu   sync.Mutex
	last *Result
}

// New wraps underlying. A nil opts uses NewOptions.
func New(graph interfaces.IGraphServer, underlying interfaces.IActivator, opts *Options) *Middleware {
	return &Middleware{
		graph:      graph,
		underlying: underlying,
		options:    opts.withDefaults(),
	}
}

// Activate runs the underlying activation exactly once, then routing, and
// returns the underlying result. If the report file cannot be opened,
// routing is skipped and the returned error wraps report.ErrSinkUnavailable.
func (m *Middleware) Activate(ctx context.Context) error {
	sink, err := report.OpenSink(m.options.ReportPath)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Middleware.Activate",
			"path":     m.options.ReportPath,
			"error":    err.Error(),
		}).Error("Cannot open report, skipping routing")

		return errors.Join(fmt.Errorf("routing skipped: %w", err), m.underlying.Activate(ctx))
	}
	defer sink.Close()

	activateErr := m.underlying.Activate(ctx)
	if activateErr != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Middleware.Activate",
			"error":    activateErr.Error(),
		}).Warn("Underlying activation failed, routing anyway")
	}

	res := NewRouter(m.graph, m.options).Run(ctx, sink)
	if res.ReportErr == nil {
		logrus.WithFields(logrus.Fields{
			"function":      "Middleware.Activate",
			"activation_id": res.ActivationID,
			"report":        sink.Path(),
		}).Debug("Report written")
	}

	m.mu.Lock()
	m.last = res
	m.mu.Unlock()

	return activateErr
}

// LastResult returns the result of the most recent routed activation.
func (m *Middleware) LastResult() *Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
