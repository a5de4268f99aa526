package simulation

import (
	"context"
	"fmt"
	"sync"

	"github.com/opd-ai/jackroute/interfaces"
	"github.com/opd-ai/jackroute/names"
	"github.com/sirupsen/logrus"
)

// Connection is an established link between two raw port names.
type Connection struct {
	Source      string
	Destination string
}

// ConnectRecord represents a connect request for test verification.
type ConnectRecord struct {
	Source      string
	Destination string
	Success     bool
	Error       error
}

// LookupHook is called before each name lookup with the requested name and
// the number of lookups made so far, this one included. It runs without the
// graph lock held, so it may add or remove ports.
type LookupHook func(name string, count int)

// Graph implements interfaces.IGraphServer entirely in memory.
type Graph struct {
	clientName       string
	ports            []interfaces.RawPort
	connections      []Connection
	connectLog       []ConnectRecord
	connectErrs      map[Connection]error
	acceptNormalized bool
	lookups          int
	lookupHook       LookupHook
	mu               sync.RWMutex
}

// Option configures a Graph.
type Option func(*Graph)

// WithNormalizedLookup makes LookupPort and Connect accept names with the
// PipeWire prefix and instance suffix removed, as pipewire-jack does.
func WithNormalizedLookup() Option {
	return func(g *Graph) {
		g.acceptNormalized = true
	}
}

// WithLookupHook installs a hook run before every lookup.
func WithLookupHook(hook LookupHook) Option {
	return func(g *Graph) {
		g.lookupHook = hook
	}
}

// NewGraph creates an empty simulated graph for a client.
func NewGraph(clientName string, opts ...Option) *Graph {
	g := &Graph{
		clientName:  clientName,
		connectErrs: make(map[Connection]error),
	}
	for _, opt := range opts {
		opt(g)
	}

	logrus.WithFields(logrus.Fields{
		"function":          "NewGraph",
		"client":            clientName,
		"accept_normalized": g.acceptNormalized,
	}).Debug("Creating simulated graph")

	return g
}

// AddPort registers a port. Re-adding a name replaces its flags and aliases
// while keeping its position.
func (g *Graph) AddPort(name string, flags interfaces.PortFlags, aliases ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	port := interfaces.RawPort{Name: name, Flags: flags, Aliases: append([]string(nil), aliases...)}
	for i := range g.ports {
		if g.ports[i].Name == name {
			g.ports[i] = port
			return
		}
	}
	g.ports = append(g.ports, port)
}

// RemovePort unregisters a port and drops its connections.
func (g *Graph) RemovePort(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	kept := g.ports[:0]
	for _, p := range g.ports {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	g.ports = kept

	conns := g.connections[:0]
	for _, c := range g.connections {
		if c.Source != name && c.Destination != name {
			conns = append(conns, c)
		}
	}
	g.connections = conns
}

// FailConnect makes every connect between source and destination fail with
// err. Names are matched as passed to Connect.
func (g *Graph) FailConnect(source, destination string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connectErrs[Connection{Source: source, Destination: destination}] = err
}

// ClientName implements interfaces.IGraphServer.
func (g *Graph) ClientName() string {
	return g.clientName
}

// Ports implements interfaces.IGraphServer. The returned slice is a copy.
func (g *Graph) Ports(ctx context.Context) ([]interfaces.RawPort, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]interfaces.RawPort, len(g.ports))
	for i, p := range g.ports {
		out[i] = interfaces.RawPort{Name: p.Name, Flags: p.Flags, Aliases: append([]string(nil), p.Aliases...)}
	}
	return out, nil
}

// LookupPort implements interfaces.IGraphServer.
func (g *Graph) LookupPort(ctx context.Context, name string) (interfaces.RawPort, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.RawPort{}, err
	}

	g.mu.Lock()
	g.lookups++
	count := g.lookups
	hook := g.lookupHook
	g.mu.Unlock()

	if hook != nil {
		hook(name, count)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if port, ok := g.find(name); ok {
		return port, nil
	}
	return interfaces.RawPort{}, fmt.Errorf("%w: %s", interfaces.ErrPortNotFound, name)
}

// find resolves name against raw names, aliases and, if enabled, normalized
// names. Callers hold g.mu.
func (g *Graph) find(name string) (interfaces.RawPort, bool) {
	if name == "" {
		return interfaces.RawPort{}, false
	}
	for _, p := range g.ports {
		if p.Name == name {
			return p, true
		}
		for _, alias := range p.Aliases {
			if alias == name {
				return p, true
			}
		}
	}
	if g.acceptNormalized {
		n := names.New(true)
		for _, p := range g.ports {
			if n.Normalize(p.Name) == name {
				return p, true
			}
		}
	}
	return interfaces.RawPort{}, false
}

// Connect implements interfaces.IGraphServer. Like libjack it reports every
// unresolvable or mistyped pair as ErrInvalidArgument.
func (g *Graph) Connect(ctx context.Context, source, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.connectLocked(source, destination)
	g.connectLog = append(g.connectLog, ConnectRecord{
		Source:      source,
		Destination: destination,
		Success:     err == nil,
		Error:       err,
	})

	logrus.WithFields(logrus.Fields{
		"function":    "Graph.Connect",
		"source":      source,
		"destination": destination,
		"success":     err == nil,
	}).Debug("Simulated connect")

	return err
}

func (g *Graph) connectLocked(source, destination string) error {
	if err, ok := g.connectErrs[Connection{Source: source, Destination: destination}]; ok {
		return err
	}

	src, okSrc := g.find(source)
	dst, okDst := g.find(destination)
	if !okSrc || !okDst {
		return fmt.Errorf("connect %s -> %s: %w", source, destination, interfaces.ErrInvalidArgument)
	}
	if !src.Flags.Has(interfaces.PortIsOutput) || !dst.Flags.Has(interfaces.PortIsInput) {
		return fmt.Errorf("connect %s -> %s: %w", source, destination, interfaces.ErrInvalidArgument)
	}

	conn := Connection{Source: src.Name, Destination: dst.Name}
	for _, c := range g.connections {
		if c == conn {
			return fmt.Errorf("connect %s -> %s: %w", source, destination, interfaces.ErrAlreadyConnected)
		}
	}
	g.connections = append(g.connections, conn)
	return nil
}

// Connections returns the established connections by raw name.
func (g *Graph) Connections() []Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Connection(nil), g.connections...)
}

// ConnectLog returns every connect request in call order.
func (g *Graph) ConnectLog() []ConnectRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]ConnectRecord(nil), g.connectLog...)
}

// LookupCount returns the number of LookupPort calls so far.
func (g *Graph) LookupCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lookups
}

// IsSimulation reports true; it lets callers label dry runs.
func (g *Graph) IsSimulation() bool {
	return true
}
