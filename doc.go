// Package fibers provides signaling primitives for goroutines that cooperate on a shared
// unit of work: a one-shot latch (Done), a counting barrier (BlockingCounter), a counting
// semaphore (Semaphore), a single-slot handoff cell (Cell) and a result mover (ResultMover)
// for carrying a computed value back across a suspension point.
//
// Suspension
// Every Wait suspends only the calling goroutine. Wake-ups are delivered by an internal
// event count built on closed channels, so Notify, Dec and Signal never block the caller
// on a waiter. No primitive supports cancellation or timeouts; callers that need bounded
// waiting race the Wait against a timer in their own goroutine.
//
// Ordering
// Notify, Dec, Signal and Emplace happen before the return of the Wait (or WaitTillFull)
// they release, so writes made before signaling are visible to the woken goroutine.
//
// Ownership
// Done and BlockingCounter are small value handles pointing to a shared state. Copies
// observe the same logical flag or counter, and the state lives as long as the longest
// holder. Semaphore and Cell are plain objects owned by the caller and must not be copied
// after first use.
//
// Debug builds
// Building with the "debug" tag enables contract checks: decrementing a BlockingCounter
// below zero and concurrent Cell producers panic instead of silently corrupting state.
package fibers
