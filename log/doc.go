// Package log defines the logger contract used across the client.
//
// The library never logs through a global: a Logger is injected where
// needed and defaults to the no-op implementation. NewZapLogger adapts a
// zap logger for production use.
package log
