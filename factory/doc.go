// Package factory creates audio graph server implementations for jackroute.
//
// The factory decouples routing from the concrete graph: production runs use
// the JACK command line tools (package real), tests and dry runs use the
// in-memory graph (package simulation), optionally seeded from a YAML
// snapshot.
//
// # Configuration
//
// The factory supports configuration via environment variables:
//   - JACKROUTE_USE_SIMULATION: "true" or "false" to enable simulation mode
//   - JACKROUTE_COMMAND_TIMEOUT: integer milliseconds per tool invocation (100-60000)
//   - JACKROUTE_JACK_LSP: path of the jack_lsp executable
//   - JACKROUTE_JACK_CONNECT: path of the jack_connect executable
//   - JACKROUTE_SNAPSHOT: YAML graph snapshot replayed in simulation mode
//
// Invalid values are logged as warnings and the default is kept.
//
// # Usage
//
//	f := factory.NewGraphFactory()
//	graph, err := f.CreateGraph("Rocksmith2014")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// [GraphFactory] is safe for concurrent use. Configuration reads return copies.
package factory
