//go:build !bmldebug

package bml

const debugChecks = false
