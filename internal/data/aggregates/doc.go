// Package aggregates implements the transactional write paths of the workflow:
// client onboarding, task status mutation and project progress recomputation.
// Each write runs in one database transaction and reports through Hooks.
package aggregates
