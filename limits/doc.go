// Package limits holds the name size limits of the JACK API.
//
// JACK stores client and port names in fixed buffers. A name that does not
// fit can never resolve, so graph implementations reject it before asking
// the server:
//
//   - MaxClientName (63 bytes): jack_client_name_size() without the NUL.
//   - MaxShortPortName (255 bytes): the part after the ':' separator.
//   - MaxFullPortName (319 bytes): jack_port_name_size() without the NUL.
//
// # Usage
//
//	if err := limits.ValidatePortName(name); err != nil {
//	    return fmt.Errorf("%w: %w", interfaces.ErrPortNotFound, err)
//	}
//
// Errors wrap ErrNameEmpty or ErrNameTooLong and report the actual length
// and the limit.
package limits
