package mr

import (
	"fmt"
	"strconv"
)

// MetadataKind tells which variant a Metadata holds.
type MetadataKind int

const (
	MetadataAbsent MetadataKind = iota
	MetadataString
	MetadataInt64
)

// Metadata is the per-input value a worker context carries: nothing, a string or an int64.
// The zero value is absent.
type Metadata struct {
	kind MetadataKind
	s    string
	i    int64
}

// StringMetadata returns a Metadata holding s.
func StringMetadata(s string) Metadata { return Metadata{kind: MetadataString, s: s} }

// Int64Metadata returns a Metadata holding i.
func Int64Metadata(i int64) Metadata { return Metadata{kind: MetadataInt64, i: i} }

func (m Metadata) Kind() MetadataKind { return m.kind }

func (m Metadata) IsAbsent() bool { return m.kind == MetadataAbsent }

// AsString returns the string variant.
func (m Metadata) AsString() (string, bool) { return m.s, m.kind == MetadataString }

// AsInt64 returns the int64 variant.
func (m Metadata) AsInt64() (int64, bool) { return m.i, m.kind == MetadataInt64 }

func (m Metadata) String() string {
	switch m.kind {
	case MetadataString:
		return strconv.Quote(m.s)
	case MetadataInt64:
		return strconv.FormatInt(m.i, 10)
	case MetadataAbsent:
		return "<absent>"
	default:
		return fmt.Sprintf("<kind %d>", m.kind)
	}
}
