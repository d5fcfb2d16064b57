package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/fibers/metrics"
	"github.com/ygrebnov/fibers/mr"
)

// memOpener serves inputs from memory and tracks how many are open at once.
type memOpener struct {
	files map[string]string
	delay time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
}

func (o *memOpener) Open(_ context.Context, url string) (io.ReadCloser, error) {
	body, ok := o.files[url]
	if !ok {
		return nil, fmt.Errorf("no such input %q", url)
	}
	n := o.active.Add(1)
	for {
		m := o.maxActive.Load()
		if n <= m || o.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(o.delay)
	return &trackedReader{Reader: strings.NewReader(body), o: o}, nil
}

type trackedReader struct {
	io.Reader
	o    *memOpener
	once sync.Once
}

func (r *trackedReader) Close() error {
	r.once.Do(func() { r.o.active.Add(-1) })
	return nil
}

func countWords(c *mr.RawContext, line string) error {
	c.Inc("lines")
	words := c.FreqMap("words")
	for _, w := range strings.Fields(line) {
		words.Inc(w)
	}
	return nil
}

func newStage(t *testing.T, mapper Mapper, opts ...Option) (*Stage, *mr.OperatorExecutor) {
	t.Helper()
	exec, err := mr.NewOperatorExecutor()
	require.NoError(t, err)
	s, err := New(exec, mapper, opts...)
	require.NoError(t, err)
	return s, exec
}

func TestStage_Run_CountsWords(t *testing.T) {
	opener := &memOpener{files: map[string]string{
		"a": "go is fun\ngo go\n",
		"b": "fun\n\nis go\n",
		"c": "",
	}}
	sink := mr.NewMemorySink()
	p := metrics.NewBasicProvider()

	s, _ := newStage(t, countWords,
		WithOpener(opener), WithSink(sink), WithMetrics(p), WithBatchSize(1), WithShards(4))

	rep, err := s.Run(context.Background(), nil, []mr.FileSpec{{URL: "a"}, {URL: "b"}, {URL: "c"}})
	require.NoError(t, err)

	require.Equal(t, 3, rep.Inputs)
	require.Zero(t, rep.Failed)
	require.Zero(t, rep.Skipped)
	require.Equal(t, int64(5), rep.Items)
	require.Equal(t, int64(5), rep.Metrics["lines"])
	require.Equal(t, int64(5), rep.Metrics[mr.MetricFnCalls])
	require.Equal(t, mr.FreqMap{"go": 4, "is": 2, "fun": 2}, rep.FreqMaps["words"])

	inputs, _ := p.CounterValue("stage_inputs_total")
	records, _ := p.CounterValue("stage_records_total")
	inflight, _ := p.CounterValue("stage_inputs_inflight")
	require.Equal(t, int64(3), inputs)
	require.Equal(t, int64(5), records)
	require.Zero(t, inflight)
}

func TestStage_Run_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("x y\nx\n"), 0o600))

	s, _ := newStage(t, countWords)
	rep, err := s.Run(context.Background(), nil, []mr.FileSpec{{URL: path}})
	require.NoError(t, err)
	require.Equal(t, mr.FreqMap{"x": 2, "y": 1}, rep.FreqMaps["words"])
}

func TestStage_Run_WritesToSink(t *testing.T) {
	opener := &memOpener{files: map[string]string{"a": "k1\nk2\nk3\n"}}
	sink := mr.NewMemorySink()

	s, _ := newStage(t, func(c *mr.RawContext, line string) error {
		c.Write(line, "rec:"+line)
		return nil
	}, WithOpener(opener), WithSink(sink), WithShards(2))

	rep, err := s.Run(context.Background(), nil, []mr.FileSpec{{URL: "a"}})
	require.NoError(t, err)
	require.Equal(t, 3, sink.Len())
	require.Equal(t, int64(3), rep.Metrics[mr.MetricFnWrites])
	require.Contains(t, sink.Records(mr.ShardOf("k2", 2)), "rec:k2")
}

func TestStage_Run_ParseErrors(t *testing.T) {
	opener := &memOpener{files: map[string]string{"a": "1\nx\n2\ny\n"}}

	s, _ := newStage(t, func(c *mr.RawContext, line string) error {
		if line < "0" || line > "9" {
			return fmt.Errorf("%w: %q is not a digit", mr.ErrParse, line)
		}
		c.Inc("digits")
		return nil
	}, WithOpener(opener), WithBatchSize(3))

	rep, err := s.Run(context.Background(), nil, []mr.FileSpec{{URL: "a"}})
	require.NoError(t, err)
	require.Equal(t, int64(2), rep.ParseErrors)
	require.Equal(t, int64(2), rep.Metrics["digits"])
	require.Equal(t, int64(4), rep.Items)
}

func TestStage_Run_Metadata(t *testing.T) {
	opener := &memOpener{files: map[string]string{"a": "l\nl\n", "b": "l\n", "c": "l\n"}}

	var (
		mu   sync.Mutex
		seen = map[string]int{}
	)
	s, _ := newStage(t, func(c *mr.RawContext, _ string) error {
		if v, ok := c.MetaData().AsInt64(); ok {
			c.IncBy("weight", v)
		}
		mu.Lock()
		seen[c.MetaData().String()]++
		mu.Unlock()
		return nil
	}, WithOpener(opener))

	rep, err := s.Run(context.Background(), nil, []mr.FileSpec{
		mr.I64FileSpec("a", 10),
		mr.StrFileSpec("b", "en"),
		{URL: "c"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(20), rep.Metrics["weight"])
	require.Equal(t, map[string]int{"10": 2, `"en"`: 1, "<absent>": 1}, seen)
}

func TestStage_Run_PreviousStageMaps(t *testing.T) {
	opener := &memOpener{files: map[string]string{"a": "go\nrust\n"}}
	prev := mr.FreqMapRegistry{"known": {"go": 1}}

	s, _ := newStage(t, func(c *mr.RawContext, line string) error {
		known, ok := c.FindFinalizedMap("known")
		if !ok {
			return errors.New("previous stage maps missing")
		}
		if _, hit := known[line]; hit {
			c.Inc("known")
		}
		return nil
	}, WithOpener(opener))

	rep, err := s.Run(context.Background(), prev, []mr.FileSpec{{URL: "a"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), rep.Metrics["known"])
}

func TestStage_Run_InputErrorsAreTagged(t *testing.T) {
	opener := &memOpener{files: map[string]string{"ok": "a\n", "panics": "a\nboom\n", "fails": "a\nbad\n"}}

	s, _ := newStage(t, func(c *mr.RawContext, line string) error {
		switch line {
		case "boom":
			panic("mapper exploded")
		case "bad":
			return errors.New("unusable record")
		}
		c.Inc("ok")
		return nil
	}, WithOpener(opener), WithBatchSize(1))

	rep, err := s.Run(context.Background(), nil, []mr.FileSpec{
		{URL: "ok"}, {URL: "missing"}, {URL: "panics"}, {URL: "fails"},
	})
	require.Error(t, err)
	require.Equal(t, 4, rep.Inputs)
	require.Equal(t, 3, rep.Failed)
	require.Equal(t, int64(3), rep.Metrics["ok"])

	errs := InputErrors(err)
	require.Len(t, errs, 3)

	idx, ok := ExtractInputIndex(errs[0])
	require.True(t, ok)
	require.Equal(t, 1, idx)
	url, ok := ExtractInputURL(errs[0])
	require.True(t, ok)
	require.Equal(t, "missing", url)

	require.ErrorIs(t, errs[1], ErrInputPanicked)
	idx, _ = ExtractInputIndex(errs[1])
	require.Equal(t, 2, idx)

	require.NotErrorIs(t, errs[2], ErrInputPanicked)
	require.Contains(t, errs[2].Error(), "unusable record")
}

func TestStage_Run_StopOnError(t *testing.T) {
	opener := &memOpener{files: map[string]string{"a": "bad\n", "b": "x\n", "c": "x\n"}}

	s, _ := newStage(t, func(_ *mr.RawContext, line string) error {
		if line == "bad" {
			return errors.New("bad line")
		}
		return nil
	}, WithOpener(opener), WithMaxWorkers(1), WithStopOnError())

	rep, err := s.Run(context.Background(), nil, []mr.FileSpec{{URL: "a"}, {URL: "b"}, {URL: "c"}})
	require.Error(t, err)
	require.Equal(t, 1, rep.Inputs)
	require.Equal(t, 1, rep.Failed)
	require.Equal(t, 2, rep.Skipped)

	errs := InputErrors(err)
	require.Len(t, errs, 3)
	require.ErrorIs(t, errs[1], ErrInputCancelled)
	require.ErrorIs(t, errs[2], ErrInputCancelled)
}

func TestStage_Run_MaxWorkersBound(t *testing.T) {
	files := map[string]string{}
	var specs []mr.FileSpec
	for i := range 12 {
		url := fmt.Sprintf("in-%d", i)
		files[url] = "a b c\n"
		specs = append(specs, mr.FileSpec{URL: url})
	}
	opener := &memOpener{files: files, delay: 10 * time.Millisecond}

	s, _ := newStage(t, countWords, WithOpener(opener), WithMaxWorkers(3))
	rep, err := s.Run(context.Background(), nil, specs)
	require.NoError(t, err)
	require.Equal(t, 12, rep.Inputs)
	require.LessOrEqual(t, opener.maxActive.Load(), int32(3))
	require.Equal(t, uint64(12), rep.FreqMaps["words"]["a"])
}

func TestStage_Run_CancelledContext(t *testing.T) {
	opener := &memOpener{files: map[string]string{"a": "x\n"}}
	s, _ := newStage(t, countWords, WithOpener(opener), WithMaxWorkers(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := s.Run(ctx, nil, []mr.FileSpec{{URL: "a"}})
	require.ErrorIs(t, err, ErrInputCancelled)
	require.Equal(t, 1, rep.Skipped)
}

func TestStage_Run_ValidatesBeforeStarting(t *testing.T) {
	opener := &memOpener{files: map[string]string{"a": "x\n"}}
	s, exec := newStage(t, countWords, WithOpener(opener))

	_, err := s.Run(context.Background(), nil, []mr.FileSpec{
		{URL: "a"},
		{URL: "b", Case: mr.MetadataCase(5)},
	})
	require.ErrorIs(t, err, mr.ErrInvalidFileSpec)
	idx, ok := ExtractInputIndex(err)
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.Empty(t, exec.MetricMap())
}

func TestStage_Run_Once(t *testing.T) {
	opener := &memOpener{files: map[string]string{"a": "x\n"}}
	s, _ := newStage(t, countWords, WithOpener(opener))

	require.False(t, s.Done().IsReady())
	_, err := s.Run(context.Background(), nil, []mr.FileSpec{{URL: "a"}})
	require.NoError(t, err)
	require.True(t, s.Done().IsReady())

	_, err = s.Run(context.Background(), nil, []mr.FileSpec{{URL: "a"}})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestNew_InvalidOptions(t *testing.T) {
	exec, err := mr.NewOperatorExecutor()
	require.NoError(t, err)

	_, err = New(nil, countWords)
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(exec, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	for _, opt := range []Option{
		WithMaxWorkers(0), WithShards(0), WithBatchSize(0),
		WithOpener(nil), WithSink(nil), WithLogger(nil), WithMetrics(nil),
	} {
		_, err = New(exec, countWords, opt)
		require.ErrorIs(t, err, ErrInvalidConfig)
	}
}
