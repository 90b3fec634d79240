// Package identifier decomposes composite package names (Maven coordinates,
// Terraform provider addresses) into the parts needed to build a registry
// URL. Parsers are pure and perform no network access.
package identifier

import "fmt"

// InvalidIdentifierError reports a structurally malformed composite package
// name. It is always surfaced to the caller, never retried or defaulted.
type InvalidIdentifierError struct {
	Input  string
	Reason string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: %s", e.Input, e.Reason)
}
