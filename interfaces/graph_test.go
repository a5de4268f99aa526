package interfaces

import (
	"context"
	"errors"
	"testing"
)

func TestPortFlagsHas(t *testing.T) {
	flags := PortIsOutput | PortIsPhysical

	if !flags.Has(PortIsOutput) {
		t.Error("expected output bit")
	}
	if !flags.Has(PortIsOutput | PortIsPhysical) {
		t.Error("expected output|physical")
	}
	if flags.Has(PortIsInput) {
		t.Error("unexpected input bit")
	}
	if !flags.Has(0) {
		t.Error("empty mask should always match")
	}
}

func TestPortFlagsString(t *testing.T) {
	tests := []struct {
		flags PortFlags
		want  string
	}{
		{0, ""},
		{PortIsInput, "input"},
		{PortIsOutput | PortIsPhysical | PortIsTerminal, "output,physical,terminal"},
	}

	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("PortFlags(%d).String() = %q, want %q", tt.flags, got, tt.want)
		}
	}
}

// TestGraphConfigValidate tests the Validate method of GraphConfig.
func TestGraphConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  GraphConfig
		wantErr error
	}{
		{
			name: "valid real config",
			config: GraphConfig{
				CommandTimeout: 2000,
				LspCommand:     "jack_lsp",
				ConnectCommand: "jack_connect",
			},
		},
		{
			name:   "simulation needs no commands",
			config: GraphConfig{UseSimulation: true, CommandTimeout: 100},
		},
		{
			name:    "zero timeout",
			config:  GraphConfig{UseSimulation: true},
			wantErr: ErrInvalidCommandTimeout,
		},
		{
			name:    "missing connect command",
			config:  GraphConfig{CommandTimeout: 100, LspCommand: "jack_lsp"},
			wantErr: ErrMissingCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestActivatorFunc(t *testing.T) {
	calls := 0
	sentinel := errors.New("boom")
	var a IActivator = ActivatorFunc(func(ctx context.Context) error {
		calls++
		return sentinel
	})

	if err := a.Activate(context.Background()); !errors.Is(err, sentinel) {
		t.Errorf("Activate() = %v, want %v", err, sentinel)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
