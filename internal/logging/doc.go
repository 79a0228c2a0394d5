// Package logging builds the zerolog loggers used across pagesel and carries
// them, together with a per-invocation trace ID, through context.Context.
//
// The interactive browser owns the terminal, so output can be routed to a log
// file or discarded entirely; non-interactive commands log to stderr.
package logging
