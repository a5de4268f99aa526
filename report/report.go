// Package report renders the human-readable diagnostic report written once
// per activation. Users read it to pick values for the override variables;
// it has no machine-readable schema.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/opd-ai/jackroute/catalog"
	"github.com/opd-ai/jackroute/connect"
	"github.com/opd-ai/jackroute/resolve"
)

// DefaultPath is the report file name, relative to the working directory.
const DefaultPath = "jack_shim_debug.log"

// ErrSinkUnavailable indicates the report file could not be opened.
var ErrSinkUnavailable = errors.New("report sink unavailable")

// exampleOverride is shown to users as a template for their launch options.
const exampleOverride = "Scarlett Solo (3rd Gen.) Pro:capture_AUX1"

// Readiness summarizes the wait for the target port.
type Readiness struct {
	Port     string
	Attempts int
	Err      error
}

// Report is everything one activation tells the user.
type Report struct {
	Version      string
	ClientName   string
	ActivationID string

	// PrefixMode is set when the client runs behind PipeWire; SearchClient
	// is then the normalized client name ports were matched against.
	PrefixMode   bool
	SearchClient string

	Readiness      Readiness
	Outcomes       []connect.Outcome
	Overrides      resolve.OverrideSet
	Snapshot       *catalog.Snapshot
	EnumerationErr error
}

// Write renders r as text.
func Write(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) {
		fmt.Fprintf(bw, format, args...)
	}

	p("Running jackroute %s as %s (activation %s)\n", r.Version, r.ClientName, r.ActivationID)
	if r.PrefixMode {
		p("Running on PipeWire, searching for client %s\n", r.SearchClient)
	}

	if r.Readiness.Port != "" {
		if r.Readiness.Err != nil {
			p("\nStopped waiting for %s after %d attempts: %v\n", r.Readiness.Port, r.Readiness.Attempts, r.Readiness.Err)
		} else {
			p("\nFound %s after %d attempts\n", r.Readiness.Port, r.Readiness.Attempts)
		}
	}

	if r.EnumerationErr != nil {
		p("\nPort enumeration failed: %v\n", r.EnumerationErr)
	}

	p("\nBeginning connections\n")
	for _, o := range r.Outcomes {
		p("%s\n", o.Line())
	}

	p("\nUse the below port names to set environment variables for custom connections to the game. " +
		"The default behaviour is to match the system-wide PipeWire device selection.\n\n")
	p("Your current environment variables are set as follows:\n")
	for _, e := range r.Overrides.Entries() {
		p("%s=%s\n", e.Key, e.Value)
	}
	p("\nFor example, to connect the jack input of a Scarlett Solo to the left input of the game, "+
		"put %s='%s' in your Steam launch options.\n", resolve.EnvPhysInputL, exampleOverride)

	snap := r.Snapshot
	if snap == nil {
		snap = &catalog.Snapshot{}
	}
	physIn, physOut, appIn, appOut := snap.Counts()

	p("\nFound %d physical input ports and %d physical output ports\n", physIn, physOut)
	listPorts(p, "Physical JACK Input Ports", snap.PhysicalInputs)
	listPorts(p, "Physical JACK Output Ports", snap.PhysicalOutputs)

	p("\nFound %d game input ports and %d game output ports\n", appIn, appOut)
	listPorts(p, "Game JACK Input Ports", snap.AppInputs)
	listPorts(p, "Game JACK Output Ports", snap.AppOutputs)

	return bw.Flush()
}

func listPorts(p func(string, ...any), title string, ports []catalog.Port) {
	if len(ports) == 0 {
		return
	}
	p("\n%s:\n", title)
	for _, port := range ports {
		p("%s\n", port.Name)
	}
}

// Sink is an opened report file. Opening happens before routing so an
// unwritable location is detected up front.
type Sink struct {
	path string
	file *os.File
}

// OpenSink creates or truncates the report file at path.
func OpenSink(path string) (*Sink, error) {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	return &Sink{path: path, file: f}, nil
}

// Path returns the report file location.
func (s *Sink) Path() string {
	return s.path
}

// Write renders r into the file, replacing anything written before.
func (s *Sink) Write(r *Report) error {
	if err := s.file.Truncate(0); err != nil {
		return err
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return Write(s.file, r)
}

// Close closes the file.
func (s *Sink) Close() error {
	return s.file.Close()
}
