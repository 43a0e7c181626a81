// Package sink provides transcript sinks for the chat client: a dated log
// file, a structured logger, a Redis stream, and a tee over several sinks.
package sink
