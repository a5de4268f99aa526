// Package simulation provides an in-memory audio graph server for
// deterministic testing and for dry runs of the routing logic.
//
// # Overview
//
// [Graph] implements interfaces.IGraphServer without a JACK server. It keeps
// ports in registration order, which stands in for the server's preference
// order, and records every connect request so tests can assert on the exact
// sequence of attempts.
//
// # PipeWire Behavior
//
// pipewire-jack registers wrapped clients as "pw-<name>-<n>" but resolves
// the plain "<name>" form too. [WithNormalizedLookup] reproduces that:
//
//	g := simulation.NewGraph("pw-Rocksmith2014-3", simulation.WithNormalizedLookup())
//	g.AddPort("pw-Rocksmith2014-3:in_1", interfaces.PortIsInput)
//	_, err := g.LookupPort(ctx, "Rocksmith2014:in_1") // resolves
//
// Connect collapses missing ports and type mismatches into
// interfaces.ErrInvalidArgument, as libjack does.
//
// # Snapshots
//
// A graph can be described in YAML and loaded with [LoadSnapshot]:
//
//	client: pw-Rocksmith2014-3
//	normalized_lookup: true
//	ports:
//	  - name: system:capture_1
//	    flags: [output, physical, terminal]
//	  - name: pw-Rocksmith2014-3:in_1
//	    flags: [input]
//
// The jackroute CLI uses snapshots to preview routing without touching a live
// server.
package simulation
