// Package real provides the production graph server for jackroute.
//
// [JackGraph] implements interfaces.IGraphServer by running the standard JACK
// command line tools: `jack_lsp -A -p` to enumerate ports with their aliases
// and properties, and `jack_connect` to link them. Both work unchanged against
// pipewire-jack.
//
//	graph := real.NewJackGraph(&interfaces.GraphConfig{
//	    CommandTimeout: 2000,
//	    LspCommand:     "jack_lsp",
//	    ConnectCommand: "jack_connect",
//	    ClientName:     "Rocksmith2014",
//	})
//	ports, err := graph.Ports(ctx)
//
// # Error Mapping
//
// Tool failures are mapped onto the interfaces sentinel errors:
//   - missing executable, timeout or "server not running": ErrServerUnavailable
//   - a rejected connect: ErrInvalidArgument, since jack_connect does not say
//     whether a port was missing or the types did not match
//
// # Testing
//
// [JackGraph.SetRunner] swaps command execution for a fake that returns
// canned tool output.
package real
