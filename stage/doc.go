// Package stage runs one pipeline stage: every input of the stage is read line by line by
// a worker, each line is handed to a Mapper together with the worker's mr.RawContext, and
// the contexts are merged into the stage's mr.OperatorExecutor as workers finish.
//
// Inputs run concurrently, optionally bounded by WithMaxWorkers. Inside a worker a reader
// goroutine hands batches of lines to the mapping goroutine through a fibers.Cell, so
// reading the next batch overlaps with mapping the current one.
//
// Errors
// A Mapper returning an error that wraps mr.ErrParse only counts a parse error. Any other
// failure (the input cannot be opened or read, the mapper panics or returns another error)
// fails that input; the error is tagged with the input index and URL (see ExtractInputIndex
// and ExtractInputURL) and all input errors are joined into the error returned by Run.
// WithStopOnError cancels the remaining inputs after the first failure.
package stage
