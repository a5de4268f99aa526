package real

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/opd-ai/jackroute/interfaces"
	"github.com/opd-ai/jackroute/limits"
	"github.com/sirupsen/logrus"
)

// Runner executes an external command and returns its trimmed stdout.
// The error of a failed command carries its stderr text.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// execRunner runs commands on the local host.
func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Command: name + " " + strings.Join(args, " "),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// CommandError reports a failed JACK tool invocation.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// JackGraph implements interfaces.IGraphServer with the jack_lsp and
// jack_connect tools. It talks to whatever server those tools reach, which
// includes pipewire-jack.
type JackGraph struct {
	config *interfaces.GraphConfig
	run    Runner
}

// NewJackGraph creates a graph for config.ClientName.
func NewJackGraph(config *interfaces.GraphConfig) *JackGraph {
	logrus.WithFields(logrus.Fields{
		"function":        "NewJackGraph",
		"client":          config.ClientName,
		"lsp":             config.LspCommand,
		"connect":         config.ConnectCommand,
		"command_timeout": config.CommandTimeout,
	}).Info("Creating JACK tool graph")

	return &JackGraph{config: config, run: execRunner}
}

// SetRunner replaces command execution (primarily for testing).
func (j *JackGraph) SetRunner(r Runner) {
	if r == nil {
		r = execRunner
	}
	j.run = r
}

// ClientName implements interfaces.IGraphServer.
func (j *JackGraph) ClientName() string {
	return j.config.ClientName
}

func (j *JackGraph) command(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(j.config.CommandTimeout)*time.Millisecond)
	defer cancel()

	out, err := j.run(ctx, name, args...)
	if err != nil && ctx.Err() != nil {
		return "", fmt.Errorf("%w: %w", err, ctx.Err())
	}
	return out, err
}

// Ports implements interfaces.IGraphServer.
func (j *JackGraph) Ports(ctx context.Context) ([]interfaces.RawPort, error) {
	out, err := j.command(ctx, j.config.LspCommand, "-A", "-p")
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "JackGraph.Ports",
			"error":    err.Error(),
		}).Error("Failed to list JACK ports")
		return nil, classify(err)
	}
	return ParseLsp(out), nil
}

// LookupPort implements interfaces.IGraphServer. A name matches a port's
// full name or one of its aliases.
func (j *JackGraph) LookupPort(ctx context.Context, name string) (interfaces.RawPort, error) {
	if err := limits.ValidatePortName(name); err != nil {
		return interfaces.RawPort{}, fmt.Errorf("%w: %w", interfaces.ErrPortNotFound, err)
	}
	ports, err := j.Ports(ctx)
	if err != nil {
		return interfaces.RawPort{}, err
	}
	for _, p := range ports {
		if p.Name == name {
			return p, nil
		}
	}
	for _, p := range ports {
		for _, alias := range p.Aliases {
			if alias == name {
				return p, nil
			}
		}
	}
	return interfaces.RawPort{}, fmt.Errorf("%w: %s", interfaces.ErrPortNotFound, name)
}

// Connect implements interfaces.IGraphServer.
func (j *JackGraph) Connect(ctx context.Context, source, destination string) error {
	for _, name := range []string{source, destination} {
		if err := limits.ValidatePortName(name); err != nil {
			return fmt.Errorf("connect %s -> %s: %w: %w", source, destination, interfaces.ErrInvalidArgument, err)
		}
	}
	_, err := j.command(ctx, j.config.ConnectCommand, source, destination)
	if err != nil {
		return fmt.Errorf("connect %s -> %s: %w", source, destination, classify(err))
	}
	return nil
}

// classify maps tool failures onto the graph sentinel errors. jack_connect
// prints the same "already connected?" hint for every rejected connect, so
// only a missing server and an explicit duplicate are told apart from the
// generic invalid-argument case.
func classify(err error) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", interfaces.ErrServerUnavailable, err)
	}

	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "server not running"),
		strings.Contains(text, "cannot connect to server"),
		strings.Contains(text, "unable to connect to jack"):
		return fmt.Errorf("%w: %w", interfaces.ErrServerUnavailable, err)
	case strings.Contains(text, "already exists"):
		return fmt.Errorf("%w: %w", interfaces.ErrAlreadyConnected, err)
	default:
		return fmt.Errorf("%w: %w", interfaces.ErrInvalidArgument, err)
	}
}
