package mr

import (
	"fmt"
	"strconv"

	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"
)

// MetadataCase is the tag of the metadata union carried by a FileSpec.
type MetadataCase int32

const (
	MetadataNotSet MetadataCase = iota
	MetadataStrVal
	MetadataI64Val
)

func (c MetadataCase) String() string {
	switch c {
	case MetadataNotSet:
		return "not_set"
	case MetadataStrVal:
		return "strval"
	case MetadataI64Val:
		return "i64val"
	default:
		return "case(" + strconv.Itoa(int(c)) + ")"
	}
}

// FileSpec describes one input of a stage: where to read it from and an optional
// metadata value handed to the worker that processes it.
//
// In YAML the metadata is given by at most one of the strval / i64val keys:
//
//	- url: https://example.com/part-0001.txt
//	  strval: en
type FileSpec struct {
	URL    string
	Case   MetadataCase
	StrVal string
	I64Val int64
}

// StrFileSpec returns a FileSpec carrying string metadata.
func StrFileSpec(url, v string) FileSpec {
	return FileSpec{URL: url, Case: MetadataStrVal, StrVal: v}
}

// I64FileSpec returns a FileSpec carrying int64 metadata.
func I64FileSpec(url string, v int64) FileSpec {
	return FileSpec{URL: url, Case: MetadataI64Val, I64Val: v}
}

// Validate rejects specs without a URL or with an unknown metadata tag.
func (fs FileSpec) Validate() error {
	if fs.URL == "" {
		return errorc.With(ErrInvalidFileSpec, errorc.String("reason", "missing url"))
	}
	switch fs.Case {
	case MetadataNotSet, MetadataStrVal, MetadataI64Val:
		return nil
	default:
		return errorc.With(
			ErrInvalidFileSpec,
			errorc.String("url", fs.URL),
			errorc.String("tag", fs.Case.String()),
		)
	}
}

func (fs FileSpec) String() string {
	switch fs.Case {
	case MetadataNotSet:
		return fmt.Sprintf("url: %q", fs.URL)
	case MetadataStrVal:
		return fmt.Sprintf("url: %q strval: %q", fs.URL, fs.StrVal)
	case MetadataI64Val:
		return fmt.Sprintf("url: %q i64val: %d", fs.URL, fs.I64Val)
	default:
		return fmt.Sprintf("url: %q %s", fs.URL, fs.Case)
	}
}

type yamlFileSpec struct {
	URL    string  `yaml:"url"`
	StrVal *string `yaml:"strval,omitempty"`
	I64Val *int64  `yaml:"i64val,omitempty"`
}

func (fs *FileSpec) UnmarshalYAML(node *yaml.Node) error {
	var raw yamlFileSpec
	if err := node.Decode(&raw); err != nil {
		return err
	}

	spec := FileSpec{URL: raw.URL}
	switch {
	case raw.StrVal != nil && raw.I64Val != nil:
		return errorc.With(
			ErrInvalidFileSpec,
			errorc.String("url", raw.URL),
			errorc.String("reason", "strval and i64val are mutually exclusive"),
		)
	case raw.StrVal != nil:
		spec.Case, spec.StrVal = MetadataStrVal, *raw.StrVal
	case raw.I64Val != nil:
		spec.Case, spec.I64Val = MetadataI64Val, *raw.I64Val
	}

	if err := spec.Validate(); err != nil {
		return err
	}
	*fs = spec
	return nil
}

func (fs FileSpec) MarshalYAML() (interface{}, error) {
	raw := yamlFileSpec{URL: fs.URL}
	switch fs.Case {
	case MetadataStrVal:
		raw.StrVal = &fs.StrVal
	case MetadataI64Val:
		raw.I64Val = &fs.I64Val
	}
	return raw, nil
}
