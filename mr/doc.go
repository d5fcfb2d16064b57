// Package mr merges the partial results of many concurrently running worker contexts
// into the single aggregate state of a pipeline stage.
//
// A stage driver creates one OperatorExecutor per stage execution, calls Init with the
// frequency maps finalized by the previous stage, and RegisterContext / SetMetaData for
// every RawContext it hands to a worker. When a worker finishes its share of input it
// calls FinalizeContext exactly once; metrics are summed and frequency maps are either
// stolen (the first map under a name) or added into the existing aggregate. At stage end
// ExtractFreqMap hands the accumulated maps to the next stage.
//
// Merging is addition, so the final aggregate does not depend on the order in which
// workers finish.
package mr
