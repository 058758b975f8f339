// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts avoid persistence details and mark the write boundaries where the
// onboarding and progress invariants must hold atomically.
package aggregates
