// Package task runs blocking foreign calls on attached worker threads.
//
// Run acquires a slot in a Pool, attaches a fresh OS thread to the
// runtime, runs the call and completes a Future. Completion callbacks go
// through the pool's delivery function so hosts with an event loop can
// receive them on their own goroutine.
//
// Cancelling the task's context does not interrupt a call already in
// the VM. It only prevents the result from being delivered: the result
// is released and the future completes with context.Canceled, which
// IsDiscarded recognizes.
package task
