package real

import (
	"strings"

	"github.com/opd-ai/jackroute/interfaces"
)

const propertiesPrefix = "properties:"

// ParseLsp parses `jack_lsp -A -p` output. Port names start a line; alias
// lines and the properties line are indented below their port.
func ParseLsp(out string) []interfaces.RawPort {
	var (
		ports   []interfaces.RawPort
		current = -1
	)

	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if line[0] != ' ' && line[0] != '\t' {
			ports = append(ports, interfaces.RawPort{Name: line})
			current = len(ports) - 1
			continue
		}
		if current < 0 {
			continue
		}

		field := strings.TrimSpace(line)
		if props, ok := strings.CutPrefix(field, propertiesPrefix); ok {
			ports[current].Flags = parseProperties(props)
			continue
		}
		ports[current].Aliases = append(ports[current].Aliases, field)
	}

	return ports
}

func parseProperties(props string) interfaces.PortFlags {
	var flags interfaces.PortFlags
	for _, p := range strings.Split(props, ",") {
		switch strings.TrimSpace(p) {
		case "input":
			flags |= interfaces.PortIsInput
		case "output":
			flags |= interfaces.PortIsOutput
		case "physical":
			flags |= interfaces.PortIsPhysical
		case "terminal":
			flags |= interfaces.PortIsTerminal
		}
	}
	return flags
}
