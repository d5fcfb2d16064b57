package stage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ygrebnov/fibers"
	"github.com/ygrebnov/fibers/mr"
)

const (
	initialLineBuffer = 64 * 1024
	maxLineSize       = 16 * 1024 * 1024
)

// batch is a group of lines moved from the reader to the mapping loop. The last batch of
// an input has eof set, whatever made the reader stop.
type batch struct {
	lines []string
	eof   bool
}

// worker processes one input at a time. Workers are pooled and reused across inputs.
type worker struct {
	buf  []byte
	cell fibers.Cell[batch]
}

func newWorker() *worker {
	return &worker{buf: make([]byte, 0, initialLineBuffer)}
}

// execute runs one input through the stage mapper and merges the worker context into the
// stage executor. It returns the number of records handed to the mapper.
func (w *worker) execute(ctx context.Context, s *Stage, j job) (int64, error) {
	c := mr.NewRawContext(s.cfg.Sink, s.cfg.Shards)
	s.exec.RegisterContext(c)
	s.exec.SetMetaData(j.spec, c)

	rc, err := s.cfg.Opener.Open(ctx, j.spec.URL)
	if err != nil {
		return 0, err
	}

	readCtx, cancelRead := context.WithCancel(ctx)
	defer cancelRead()

	var reader fibers.ResultMover[error]
	readDone := fibers.NewDone()
	go func() {
		reader.Apply(func() error { return w.read(readCtx, rc, s.cfg.BatchSize) })
		readDone.Notify()
	}()

	var (
		items  int64
		mapErr error
	)
	for {
		w.cell.WaitTillFull()
		b := *w.cell.Value()
		w.cell.Clear()

		if mapErr == nil && len(b.lines) > 0 {
			n, err := s.mapBatch(c, b.lines)
			items += n
			if err != nil {
				mapErr = err
				cancelRead()
			}
		}
		if b.eof {
			break
		}
	}

	readDone.Wait(fibers.AndNothing)
	readErr := reader.Get()
	_ = rc.Close()

	if mapErr != nil && ctx.Err() == nil {
		// the reader was stopped because of mapErr.
		readErr = nil
	}

	flushErr := s.exec.FinalizeContext(items, c)
	return items, errors.Join(mapErr, readErr, flushErr)
}

// read splits r into lines and hands them to the mapping loop in batches.
func (w *worker) read(ctx context.Context, r io.Reader, batchSize uint) error {
	lines := make([]string, 0, batchSize)
	defer func() { w.cell.Emplace(batch{lines: lines, eof: true}) }()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInputCancelled, err)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(w.buf, maxLineSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
		if uint(len(lines)) < batchSize {
			continue
		}
		if err := ctx.Err(); err != nil {
			lines = nil
			return fmt.Errorf("%w: %w", ErrInputCancelled, err)
		}
		w.cell.Emplace(batch{lines: lines})
		lines = make([]string, 0, batchSize)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRead, err)
	}
	return nil
}
