package simulation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/opd-ai/jackroute/interfaces"
	"github.com/opd-ai/jackroute/limits"
	"gopkg.in/yaml.v3"
)

// Snapshot errors.
var (
	// ErrUnknownFlag indicates a port flag name the snapshot format does not define.
	ErrUnknownFlag = errors.New("unknown port flag")

	// ErrEmptyPortName indicates a snapshot port without a name.
	ErrEmptyPortName = errors.New("port name is empty")
)

// Snapshot is the YAML description of a graph.
type Snapshot struct {
	Client           string         `yaml:"client"`
	NormalizedLookup bool           `yaml:"normalized_lookup"`
	Ports            []SnapshotPort `yaml:"ports"`
}

// SnapshotPort is one port entry of a Snapshot.
type SnapshotPort struct {
	Name    string   `yaml:"name"`
	Flags   []string `yaml:"flags"`
	Aliases []string `yaml:"aliases,omitempty"`
}

var flagNames = map[string]interfaces.PortFlags{
	"input":    interfaces.PortIsInput,
	"output":   interfaces.PortIsOutput,
	"physical": interfaces.PortIsPhysical,
	"terminal": interfaces.PortIsTerminal,
}

// ParseFlags converts flag names such as "output" or "physical" to a mask.
func ParseFlags(list []string) (interfaces.PortFlags, error) {
	var flags interfaces.PortFlags
	for _, name := range list {
		f, ok := flagNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
		}
		flags |= f
	}
	return flags, nil
}

// ParseSnapshot decodes a YAML snapshot.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	for i, p := range snap.Ports {
		if p.Name == "" {
			return nil, fmt.Errorf("port %d: %w", i, ErrEmptyPortName)
		}
		if err := limits.ValidatePortName(p.Name); err != nil {
			return nil, fmt.Errorf("port %d: %w", i, err)
		}
		if _, err := ParseFlags(p.Flags); err != nil {
			return nil, fmt.Errorf("port %s: %w", p.Name, err)
		}
	}
	return &snap, nil
}

// LoadSnapshot reads and decodes a YAML snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return ParseSnapshot(data)
}

// Graph builds a simulated graph holding the snapshot's ports. clientName,
// when set, replaces the snapshot's client.
func (s *Snapshot) Graph(clientName string, opts ...Option) *Graph {
	if clientName == "" {
		clientName = s.Client
	}
	if s.NormalizedLookup {
		opts = append([]Option{WithNormalizedLookup()}, opts...)
	}

	g := NewGraph(clientName, opts...)
	for _, p := range s.Ports {
		// validated by ParseSnapshot
		flags, _ := ParseFlags(p.Flags)
		g.AddPort(p.Name, flags, p.Aliases...)
	}
	return g
}

// Capture builds a snapshot from a live graph's ports so it can be saved and
// replayed later.
func Capture(client string, ports []interfaces.RawPort) *Snapshot {
	snap := &Snapshot{Client: client}
	for _, p := range ports {
		var list []string
		for _, name := range []string{"input", "output", "physical", "terminal"} {
			if p.Flags.Has(flagNames[name]) {
				list = append(list, name)
			}
		}
		snap.Ports = append(snap.Ports, SnapshotPort{
			Name:    p.Name,
			Flags:   list,
			Aliases: append([]string(nil), p.Aliases...),
		})
	}
	return snap
}

// Marshal encodes the snapshot as YAML.
func (s *Snapshot) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
