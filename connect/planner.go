// Package connect issues the four stereo connections of an activation and
// classifies each outcome.
package connect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/jackroute/interfaces"
	"github.com/opd-ai/jackroute/resolve"
	"github.com/sirupsen/logrus"
)

// Status is the result class of one connection attempt.
type Status int

const (
	StatusConnected Status = iota
	StatusSkippedSourceUnset
	StatusSkippedDestinationUnset
	StatusFailed
)

// String returns a lowercase label for the status.
func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusSkippedSourceUnset:
		return "skipped-source-unset"
	case StatusSkippedDestinationUnset:
		return "skipped-destination-unset"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Skipped reports whether no connect call was made.
func (s Status) Skipped() bool {
	return s == StatusSkippedSourceUnset || s == StatusSkippedDestinationUnset
}

// Failure reasons derived from an ErrInvalidArgument rejection.
const (
	ReasonIncompatibleTypes = "incompatible port types"
	ReasonAlreadyConnected  = "already connected"
	reasonNotFoundPrefix    = "port not found: "
)

// Outcome is the result of one attempt.
type Outcome struct {
	Source      resolve.Endpoint
	Destination resolve.Endpoint
	Status      Status
	// Reason explains a failure in user terms; empty otherwise.
	Reason string
	// Err is the server error behind a failure.
	Err error
}

// Line renders the outcome as a report line.
func (o Outcome) Line() string {
	switch o.Status {
	case StatusConnected:
		return fmt.Sprintf("Connected %s -> %s", o.Source.Name, o.Destination.Name)
	case StatusSkippedSourceUnset:
		return fmt.Sprintf("Source is unset, intentionally skipping connection to %s", o.Destination.Name)
	case StatusSkippedDestinationUnset:
		return fmt.Sprintf("Destination is unset, intentionally skipping connection from %s", o.Source.Name)
	default:
		return fmt.Sprintf("Failed to connect %s -> %s (%s)", o.Source.Name, o.Destination.Name, o.Reason)
	}
}

// Planner connects endpoints through a graph server. Each attempt is made
// once and never retried.
type Planner struct {
	graph interfaces.IGraphServer
}

// NewPlanner creates a planner for graph.
func NewPlanner(graph interfaces.IGraphServer) *Planner {
	return &Planner{graph: graph}
}

// ConnectAll makes the four attempts in fixed order: hardware-in left and
// right to the application's inputs, then the application's outputs to
// hardware-out left and right. A failure never stops later attempts.
func (p *Planner) ConnectAll(ctx context.Context, res resolve.Resolution) []Outcome {
	return []Outcome{
		p.Connect(ctx, res.PhysicalIn.Left, res.AppIn.Left),
		p.Connect(ctx, res.PhysicalIn.Right, res.AppIn.Right),
		p.Connect(ctx, res.AppOut.Left, res.PhysicalOut.Left),
		p.Connect(ctx, res.AppOut.Right, res.PhysicalOut.Right),
	}
}

// Connect attempts a single connection.
func (p *Planner) Connect(ctx context.Context, src, dst resolve.Endpoint) Outcome {
	out := Outcome{Source: src, Destination: dst}

	switch {
	case !src.IsSet():
		out.Status = StatusSkippedSourceUnset
	case !dst.IsSet():
		out.Status = StatusSkippedDestinationUnset
	default:
		srcName := p.connectableName(ctx, src)
		dstName := p.connectableName(ctx, dst)
		if err := p.graph.Connect(ctx, srcName, dstName); err != nil {
			out.Status = StatusFailed
			out.Err = err
			out.Reason = p.explain(ctx, err, src, dst)
		} else {
			out.Status = StatusConnected
		}
	}

	p.log(out)
	return out
}

// connectableName picks the form of an endpoint's name that the server's
// own lookup resolves: the display name first, then the raw name. When
// neither resolves the display name is used and the connect reports it.
func (p *Planner) connectableName(ctx context.Context, e resolve.Endpoint) string {
	if p.resolves(ctx, e.Name) {
		return e.Name
	}
	if e.Raw != "" && e.Raw != e.Name && p.resolves(ctx, e.Raw) {
		return e.Raw
	}
	return e.Name
}

func (p *Planner) resolves(ctx context.Context, name string) bool {
	_, err := p.graph.LookupPort(ctx, name)
	return err == nil
}

// explain turns a connect error into a reason. The server collapses missing
// ports and type mismatches into one invalid-argument error, so both sides
// are looked up again. The graph may have changed since the attempt; the
// reason is best effort.
func (p *Planner) explain(ctx context.Context, err error, src, dst resolve.Endpoint) string {
	switch {
	case errors.Is(err, interfaces.ErrAlreadyConnected):
		return ReasonAlreadyConnected
	case !errors.Is(err, interfaces.ErrInvalidArgument):
		return err.Error()
	}

	var missing []string
	for _, e := range []resolve.Endpoint{src, dst} {
		if !p.resolves(ctx, e.Name) && (e.Raw == "" || !p.resolves(ctx, e.Raw)) {
			missing = append(missing, reasonNotFoundPrefix+e.Name)
		}
	}
	if len(missing) == 0 {
		return ReasonIncompatibleTypes
	}
	return strings.Join(missing, "; ")
}

func (p *Planner) log(out Outcome) {
	entry := logrus.WithFields(logrus.Fields{
		"function":    "Planner.Connect",
		"source":      out.Source.Name,
		"destination": out.Destination.Name,
		"status":      out.Status.String(),
	})

	switch out.Status {
	case StatusConnected:
		entry.Info("Connected ports")
	case StatusFailed:
		entry.WithFields(logrus.Fields{
			"reason": out.Reason,
			"error":  out.Err.Error(),
		}).Error("Failed to connect ports")
	default:
		entry.Warn("Skipped connection with unresolved endpoint")
	}
}
