// Package interfaces defines the abstractions routing needs from the audio
// graph server and from the host's activation routine.
//
// The same routing code runs against an in-memory graph (package simulation)
// and against a live JACK server driven through its command line tools
// (package real).
//
// # Core Interfaces
//
// [IGraphServer] enumerates ports, resolves names with the server's own lookup
// rules and creates connections:
//
//	ports, err := graph.Ports(ctx)
//	if err != nil {
//	    log.Printf("enumeration failed: %v", err)
//	}
//	for _, p := range ports {
//	    if p.Flags.Has(interfaces.PortIsOutput | interfaces.PortIsPhysical) {
//	        fmt.Println("capture:", p.Name)
//	    }
//	}
//
// [IActivator] is the single-method capability the routing middleware wraps.
// [ActivatorFunc] adapts a closure:
//
//	underlying := interfaces.ActivatorFunc(func(ctx context.Context) error {
//	    return client.Activate()
//	})
//
// # Configuration
//
// [GraphConfig] holds settings for graph implementations:
//
//	config := &interfaces.GraphConfig{
//	    CommandTimeout: 2000, // milliseconds
//	    LspCommand:     "jack_lsp",
//	    ConnectCommand: "jack_connect",
//	    ClientName:     "Rocksmith2014",
//	}
//	if err := config.Validate(); err != nil {
//	    log.Fatalf("invalid config: %v", err)
//	}
//
// # Error Handling
//
// Graph implementations wrap [ErrInvalidArgument], [ErrPortNotFound],
// [ErrAlreadyConnected] and [ErrServerUnavailable] so callers can classify
// failures with errors.Is. A connect rejection is usually reported as
// ErrInvalidArgument even when the real cause is a missing port; callers that
// need a precise reason re-check each side with LookupPort.
package interfaces
