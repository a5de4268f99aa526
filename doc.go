// Package jackroute connects an audio application's JACK ports to the
// machine's physical audio interface as soon as the application activates.
//
// Applications that expect a hardware-wired JACK setup often open their
// ports and never connect them. jackroute wraps the application's activation
// and, once the application's ports exist, links two physical capture ports
// to the application's two inputs and the application's two outputs to two
// physical playback ports.
//
// # Getting Started
//
// Wrap the activation call with a [Middleware]:
//
//	graph := real.NewJackGraph(config)
//	m := jackroute.New(graph, activator, jackroute.NewOptions())
//	if err := m.Activate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(m.LastResult().Connected(), "connections made")
//
// Activate calls the wrapped activation exactly once and returns its error.
// Routing problems never change that result; they are logged and written to
// the diagnostic report instead.
//
// # Routing Sequence
//
// Each activation moves through the stages listed by [Stage]:
//
//  1. wait until the application's ready port resolves (see package readiness)
//  2. enumerate physical and application ports (see package catalog)
//  3. pick endpoints from RS_* overrides or discovered ports (see package resolve)
//  4. attempt the four connections in fixed order (see package connect)
//  5. write the report (see package report)
//
// The wait polls every 250ms and has no limit unless
// [Options].MaxWaitAttempts is set or ctx is cancelled.
//
// # Overrides
//
// Endpoints can be pinned through the environment:
//
//	RS_PHYS_INPUT_L   RS_PHYS_INPUT_R    physical sources for the app inputs
//	RS_PHYS_OUTPUT_L  RS_PHYS_OUTPUT_R   physical sinks for the app outputs
//	RS_GAME_IN_L      RS_GAME_IN_R       application inputs
//	RS_GAME_OUT_L     RS_GAME_OUT_R      application outputs
//
// Setting any variable of a group disables discovery for that whole group,
// and unset members are skipped rather than guessed. Physical inputs and
// physical outputs are separate groups; the four RS_GAME_* variables form one.
//
// # PipeWire
//
// Under pipewire-jack the client is registered as "pw-<name>-<n>". When the
// client name carries the "pw-" prefix, names are normalized before display
// and matching so that "pw-Rocksmith2014-3:in_1" reads as "Rocksmith2014:in_1".
// See package names.
//
// # Testing
//
// Package simulation provides an in-memory graph server that can be
// described in YAML. The jackroute command uses it through --snapshot to
// preview routing without a running server.
package jackroute
