// Package app contains the two long-running processes of the gatekeeper:
// the timed membership reconciliation loop and the sentiment alert fan-out.
// Both depend on domain interfaces, not concrete adapters.
package app
