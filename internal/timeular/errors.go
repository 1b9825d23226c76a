package timeular

import "fmt"

// AuthError indicates the Timeular API rejected our credentials, either at
// sign-in or on a data request that kept failing with 401 after re-auth.
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("timeular authentication failed: %s", e.Reason)
}

// TransportError indicates a non-2xx response other than the handled 401
// re-auth case.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("timeular request failed (status %d): %s", e.Status, e.Body)
}
