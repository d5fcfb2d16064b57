package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ygrebnov/fibers/mr"
)

const (
	freqMapWords = "words"
	metricLines  = "lines"
)

// countWords counts the words of one line into the "words" frequency map and writes every
// word as an output record keyed by itself.
//
// String metadata names the input's language and is counted per language; int64 metadata
// is a weight applied to every word of the input.
func countWords(c *mr.RawContext, line string) error {
	if !utf8.ValidString(line) {
		return fmt.Errorf("%w: invalid utf-8", mr.ErrParse)
	}

	c.Inc(metricLines)
	weight := uint64(1)
	switch md := c.MetaData(); md.Kind() {
	case mr.MetadataString:
		lang, _ := md.AsString()
		c.Inc(metricLines + "." + lang)
	case mr.MetadataInt64:
		if w, _ := md.AsInt64(); w > 0 {
			weight = uint64(w)
		}
	}

	words := c.FreqMap(freqMapWords)
	for _, w := range strings.Fields(line) {
		w = strings.ToLower(strings.Trim(w, ".,;:!?\"'()[]{}"))
		if w == "" {
			continue
		}
		words.IncBy(w, weight)
		c.Write(w, w)
	}
	return nil
}
