//go:build bmldebug

package bml

// debugChecks turns on per-access bounds assertions in grid accessors.
const debugChecks = true
