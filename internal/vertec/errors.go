package vertec

import "fmt"

// TransportError indicates a non-2xx HTTP response from the Vertec endpoint.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("vertec query failed (status %d): %s", e.Status, e.Body)
}

// ProtocolFormatError indicates a response missing an expected structural
// node, pointing at a protocol mismatch or an upstream schema change.
type ProtocolFormatError struct {
	Missing string
}

func (e *ProtocolFormatError) Error() string {
	return fmt.Sprintf("invalid vertec response: missing %s", e.Missing)
}
