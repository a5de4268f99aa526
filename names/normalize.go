// Package names normalizes client and port names reported by a JACK graph
// server running behind PipeWire.
//
// PipeWire registers a wrapped JACK client as "pw-<name>" and may insert an
// instance suffix "-<digits>" before the port separator, so a client that
// asked for "Rocksmith2014" shows up as "pw-Rocksmith2014-3:in_1". A
// [Normalizer] removes both so names match what the application registered.
package names

import "strings"

const (
	// TransportPrefix is the client name prefix injected by PipeWire.
	TransportPrefix = "pw-"

	// Separator splits the client and port parts of a full port name.
	Separator = ":"
)

// Normalizer maps raw graph names to display names. The zero value has
// prefix mode off and returns every name unchanged.
type Normalizer struct {
	prefixMode bool
}

// New returns a Normalizer with transport-prefix mode set explicitly.
func New(prefixMode bool) Normalizer {
	return Normalizer{prefixMode: prefixMode}
}

// Detect returns a Normalizer whose prefix mode is on when the client name
// reported for the current activation carries the transport prefix.
func Detect(clientName string) Normalizer {
	return New(HasTransportPrefix(clientName))
}

// HasTransportPrefix reports whether name starts with the PipeWire prefix.
func HasTransportPrefix(name string) bool {
	return strings.HasPrefix(name, TransportPrefix)
}

// PrefixMode reports whether transport-prefix mode is active.
func (n Normalizer) PrefixMode() bool {
	return n.prefixMode
}

// Normalize returns the display name for a raw port or client name.
//
// Only names carrying the transport prefix are rewritten: hardware ports keep
// their names even in prefix mode. A "-<digits>" run directly before the
// first separator is removed; digits without a leading '-' are part of the
// real name ("Scarlett 2i2") and stay.
func (n Normalizer) Normalize(raw string) string {
	if !n.prefixMode || !HasTransportPrefix(raw) {
		return raw
	}

	name := raw
	for HasTransportPrefix(name) {
		name = name[len(TransportPrefix):]
	}

	sep := strings.Index(name, Separator)
	if sep < 0 {
		return name
	}
	return stripInstanceSuffix(name, sep)
}

// NormalizeClient normalizes a bare client name, including its instance
// suffix, as if it were followed by a port separator.
func (n Normalizer) NormalizeClient(raw string) string {
	if strings.Contains(raw, Separator) {
		client, _, _ := Split(n.Normalize(raw))
		return client
	}
	return strings.TrimSuffix(n.Normalize(raw+Separator), Separator)
}

// stripInstanceSuffix removes a "-<digits>" span ending at sep.
func stripInstanceSuffix(name string, sep int) string {
	start := sep
	for start > 0 && isDigit(name[start-1]) {
		start--
	}
	if start == sep || start == 0 || name[start-1] != '-' {
		return name
	}
	return name[:start-1] + name[sep:]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Split breaks a full port name at its first separator. ok is false when the
// name has no separator, in which case client holds the whole name.
func Split(name string) (client, port string, ok bool) {
	return strings.Cut(name, Separator)
}

// Join builds a full port name.
func Join(client, port string) string {
	return client + Separator + port
}
