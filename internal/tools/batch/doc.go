// Package batch runs one tool operation over several identifiers and
// reports per-item outcomes, so a single failing item does not fail the
// whole call.
package batch
