package interfaces

import (
	"context"
	"errors"
	"strings"
)

// PortFlags mirrors the JACK port flag bits that routing cares about.
type PortFlags uint32

const (
	// PortIsInput marks a sink: the port accepts a signal (playback side).
	PortIsInput PortFlags = 1 << iota
	// PortIsOutput marks a source: the port produces a signal (capture side).
	PortIsOutput
	// PortIsPhysical marks a port backed by real hardware I/O.
	PortIsPhysical
	// PortIsTerminal marks a port whose signal neither originates nor ends
	// inside the graph.
	PortIsTerminal
)

// Has reports whether every bit in want is set.
func (f PortFlags) Has(want PortFlags) bool {
	return f&want == want
}

// String renders the flags the way jack_lsp prints port properties.
func (f PortFlags) String() string {
	var parts []string
	if f.Has(PortIsInput) {
		parts = append(parts, "input")
	}
	if f.Has(PortIsOutput) {
		parts = append(parts, "output")
	}
	if f.Has(PortIsPhysical) {
		parts = append(parts, "physical")
	}
	if f.Has(PortIsTerminal) {
		parts = append(parts, "terminal")
	}
	return strings.Join(parts, ",")
}

// RawPort is a port as reported by the graph server. Name has the form
// client:port. Values are copies; the server owns the underlying port.
type RawPort struct {
	Name    string
	Flags   PortFlags
	Aliases []string
}

// Graph server errors. Implementations wrap these so callers can classify
// failures with errors.Is.
var (
	// ErrInvalidArgument is the generic rejection returned by connect when the
	// server does not say why. It may hide a missing port or a type mismatch.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPortNotFound indicates a name lookup did not resolve.
	ErrPortNotFound = errors.New("port not found")

	// ErrAlreadyConnected indicates the connection already exists.
	ErrAlreadyConnected = errors.New("ports already connected")

	// ErrServerUnavailable indicates the graph server could not be reached.
	ErrServerUnavailable = errors.New("graph server unavailable")
)

// IGraphServer is the audio graph server seen from one client.
// Implementations must be safe for the concurrent use the server itself
// allows; routing calls it from a single goroutine.
type IGraphServer interface {
	// ClientName returns the name the server registered this client under.
	ClientName() string

	// Ports enumerates every port in server order.
	Ports(ctx context.Context) ([]RawPort, error)

	// LookupPort resolves a port by name using the server's own lookup rules.
	// It returns an error wrapping ErrPortNotFound when nothing matches.
	LookupPort(ctx context.Context, name string) (RawPort, error)

	// Connect links source to destination.
	Connect(ctx context.Context, source, destination string) error
}

// IActivator is the underlying activation the routing middleware wraps.
type IActivator interface {
	Activate(ctx context.Context) error
}

// ActivatorFunc adapts a plain function to IActivator.
type ActivatorFunc func(ctx context.Context) error

// Activate calls f.
func (f ActivatorFunc) Activate(ctx context.Context) error {
	return f(ctx)
}

// GraphConfig holds configuration for graph server implementations.
type GraphConfig struct {
	// UseSimulation selects the in-memory graph instead of the JACK tools.
	UseSimulation bool

	// CommandTimeout bounds each external tool invocation, in milliseconds.
	CommandTimeout int

	// LspCommand is the jack_lsp executable.
	LspCommand string

	// ConnectCommand is the jack_connect executable.
	ConnectCommand string

	// ClientName is the client routing acts for.
	ClientName string

	// SnapshotPath is a YAML graph description loaded in simulation mode.
	SnapshotPath string
}

// Validate checks the configuration for values no implementation accepts.
func (c *GraphConfig) Validate() error {
	if c.CommandTimeout <= 0 {
		return ErrInvalidCommandTimeout
	}
	if !c.UseSimulation && (c.LspCommand == "" || c.ConnectCommand == "") {
		return ErrMissingCommand
	}
	return nil
}

// Configuration validation errors.
var (
	ErrInvalidCommandTimeout = errors.New("command timeout must be positive")
	ErrMissingCommand        = errors.New("jack tool command must be set")
)
