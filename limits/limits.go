// Package limits provides the JACK name size limits shared by the graph
// implementations.
package limits

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxClientName is the longest client name JACK accepts
	// (jack_client_name_size() minus the terminating NUL).
	MaxClientName = 63

	// MaxShortPortName is the longest port name after the client separator.
	MaxShortPortName = 255

	// MaxFullPortName is the longest "client:port" name
	// (jack_port_name_size() minus the terminating NUL).
	MaxFullPortName = MaxClientName + 1 + MaxShortPortName
)

var (
	// ErrNameEmpty indicates an empty name was provided
	ErrNameEmpty = errors.New("empty name")

	// ErrNameTooLong indicates a name exceeds the JACK limit
	ErrNameTooLong = errors.New("name too long")
)

// ValidateNameSize validates a name against the specified maximum length.
func ValidateNameSize(name string, maxSize int) error {
	if name == "" {
		return ErrNameEmpty
	}
	if len(name) > maxSize {
		return fmt.Errorf("%w: length %d exceeds limit %d", ErrNameTooLong, len(name), maxSize)
	}
	return nil
}

// ValidateClientName validates a client name against MaxClientName.
func ValidateClientName(name string) error {
	if err := ValidateNameSize(name, MaxClientName); err != nil {
		return fmt.Errorf("client name: %w", err)
	}
	return nil
}

// ValidatePortName validates a full port name. Names with a separator have
// each half checked too; alias names without one only get the overall limit.
func ValidatePortName(name string) error {
	if err := ValidateNameSize(name, MaxFullPortName); err != nil {
		return fmt.Errorf("port name: %w", err)
	}
	client, short, ok := strings.Cut(name, ":")
	if !ok {
		return nil
	}
	if err := ValidateNameSize(client, MaxClientName); err != nil {
		return fmt.Errorf("port %q client part: %w", name, err)
	}
	if err := ValidateNameSize(short, MaxShortPortName); err != nil {
		return fmt.Errorf("port %q short name: %w", name, err)
	}
	return nil
}
