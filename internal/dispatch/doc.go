// Package dispatch provides handler execution for the broker.
//
// The Executor runs a single handler with panic recovery, context
// checking, and timing capture. The Sequencer runs ordered handler
// chains in the caller's goroutine, fail-fast on the first error or
// panic. There is deliberately no worker pool here: an emission is a
// direct, sequential fan-out, and sequential execution is what makes
// priority ordering deterministic across mixed sync/async subscriber
// sets.
package dispatch
