// Package catalog enumerates the ports routing needs from the audio graph.
package catalog

import (
	"context"
	"fmt"

	"github.com/opd-ai/jackroute/interfaces"
	"github.com/opd-ai/jackroute/names"
	"github.com/sirupsen/logrus"
)

// Port is a copy of a graph port together with its normalized names.
type Port struct {
	// Raw is the name exactly as the graph server reported it.
	Raw string
	// Name is the normalized display name.
	Name string
	// Client is the normalized client part of Name.
	Client string
	// Short is the port part of Name.
	Short string
	Flags interfaces.PortFlags
}

// Filter selects ports. A port matches when it has every bit in Flags and,
// if Client is set, belongs to that client by raw or normalized name.
type Filter struct {
	Client string
	Flags  interfaces.PortFlags
}

// Catalog answers port queries for one activation.
type Catalog struct {
	graph      interfaces.IGraphServer
	normalizer names.Normalizer
}

// New creates a catalog over graph using n to clean discovered names.
func New(graph interfaces.IGraphServer, n names.Normalizer) *Catalog {
	return &Catalog{graph: graph, normalizer: n}
}

// Normalizer returns the normalizer the catalog applies.
func (c *Catalog) Normalizer() names.Normalizer {
	return c.normalizer
}

// List returns the ports matching filter in server order. No match yields an
// empty slice and a nil error.
func (c *Catalog) List(ctx context.Context, filter Filter) ([]Port, error) {
	raw, err := c.graph.Ports(ctx)
	if err != nil {
		return []Port{}, fmt.Errorf("enumerate ports: %w", err)
	}

	wantClient := c.normalizer.NormalizeClient(filter.Client)
	matched := make([]Port, 0, len(raw))
	for _, rp := range raw {
		if !rp.Flags.Has(filter.Flags) {
			continue
		}
		port := c.describe(rp)
		if filter.Client != "" && !belongsTo(rp.Name, port.Client, filter.Client, wantClient) {
			continue
		}
		matched = append(matched, port)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Catalog.List",
		"client":   filter.Client,
		"flags":    filter.Flags.String(),
		"total":    len(raw),
		"matched":  len(matched),
	}).Debug("Listed graph ports")

	return matched, nil
}

func (c *Catalog) describe(rp interfaces.RawPort) Port {
	name := c.normalizer.Normalize(rp.Name)
	client, short, _ := names.Split(name)
	return Port{
		Raw:    rp.Name,
		Name:   name,
		Client: client,
		Short:  short,
		Flags:  rp.Flags,
	}
}

func belongsTo(rawName, normalizedClient, rawClient, wantClient string) bool {
	client, _, _ := names.Split(rawName)
	return client == rawClient || normalizedClient == wantClient
}

// PhysicalInputs lists hardware capture ports. They are sources in the graph.
func (c *Catalog) PhysicalInputs(ctx context.Context) ([]Port, error) {
	return c.List(ctx, Filter{Flags: interfaces.PortIsOutput | interfaces.PortIsPhysical})
}

// PhysicalOutputs lists hardware playback ports. They are sinks in the graph.
func (c *Catalog) PhysicalOutputs(ctx context.Context) ([]Port, error) {
	return c.List(ctx, Filter{Flags: interfaces.PortIsInput | interfaces.PortIsPhysical})
}

// AppInputs lists the sink ports owned by client.
func (c *Catalog) AppInputs(ctx context.Context, client string) ([]Port, error) {
	return c.List(ctx, Filter{Client: client, Flags: interfaces.PortIsInput})
}

// AppOutputs lists the source ports owned by client.
func (c *Catalog) AppOutputs(ctx context.Context, client string) ([]Port, error) {
	return c.List(ctx, Filter{Client: client, Flags: interfaces.PortIsOutput})
}

// Snapshot holds the four standard queries of one activation.
type Snapshot struct {
	PhysicalInputs  []Port
	PhysicalOutputs []Port
	AppInputs       []Port
	AppOutputs      []Port
}

// Counts returns the number of ports per query in Snapshot field order.
func (s *Snapshot) Counts() (physIn, physOut, appIn, appOut int) {
	return len(s.PhysicalInputs), len(s.PhysicalOutputs), len(s.AppInputs), len(s.AppOutputs)
}

// Take runs the four standard queries for client. A failed query leaves its
// list empty; the first error is returned alongside the partial snapshot.
func (c *Catalog) Take(ctx context.Context, client string) (*Snapshot, error) {
	var (
		snap     Snapshot
		firstErr error
	)
	record := func(ports []Port, err error) []Port {
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return ports
	}

	snap.PhysicalInputs = record(c.PhysicalInputs(ctx))
	snap.PhysicalOutputs = record(c.PhysicalOutputs(ctx))
	snap.AppInputs = record(c.AppInputs(ctx, client))
	snap.AppOutputs = record(c.AppOutputs(ctx, client))

	physIn, physOut, appIn, appOut := snap.Counts()
	logrus.WithFields(logrus.Fields{
		"function":         "Catalog.Take",
		"client":           client,
		"physical_inputs":  physIn,
		"physical_outputs": physOut,
		"app_inputs":       appIn,
		"app_outputs":      appOut,
	}).Info("Enumerated graph ports")

	return &snap, firstErr
}

// Names returns the display names of ports.
func Names(ports []Port) []string {
	out := make([]string, len(ports))
	for i, p := range ports {
		out[i] = p.Name
	}
	return out
}
