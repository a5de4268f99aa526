package jackroute

import (
	"time"

	"github.com/opd-ai/jackroute/readiness"
	"github.com/opd-ai/jackroute/report"
	"github.com/opd-ai/jackroute/resolve"
)

// DefaultReadyPortName is the port, on the target's own client, whose
// appearance marks the target as ready.
const DefaultReadyPortName = "in_1"

// Options configures routing for an activation.
type Options struct {
	// ReportPath is where the diagnostic report is written.
	ReportPath string

	// ReadyPort is the full port name to wait for. Empty waits for
	// DefaultReadyPortName on the normalized client.
	ReadyPort string

	// PollInterval is the delay between readiness lookups.
	PollInterval time.Duration

	// MaxWaitAttempts bounds the readiness wait. Zero waits forever.
	MaxWaitAttempts int

	// Lookup reads the override variables. Nil reads the process environment.
	Lookup resolve.LookupFunc

	// TimeProvider paces readiness polling. Nil uses the system clock.
	TimeProvider readiness.TimeProvider

	// Version is printed in the report header.
	Version string
}

// NewOptions returns the defaults used by the shim.
func NewOptions() *Options {
	return &Options{
		ReportPath:   report.DefaultPath,
		PollInterval: readiness.DefaultPollInterval,
		Version:      Version,
	}
}

// withDefaults fills zero fields without touching the caller's value.
func (o *Options) withDefaults() *Options {
	out := NewOptions()
	if o == nil {
		return out
	}
	cp := *o
	if cp.ReportPath == "" {
		cp.ReportPath = out.ReportPath
	}
	if cp.PollInterval <= 0 {
		cp.PollInterval = out.PollInterval
	}
	if cp.Version == "" {
		cp.Version = out.Version
	}
	return &cp
}
