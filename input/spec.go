package input

import (
	"os"
	"strconv"

	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"

	"github.com/ygrebnov/fibers/mr"
)

// Spec is the input specification of one stage.
type Spec struct {
	Name   string        `yaml:"name"`
	Inputs []mr.FileSpec `yaml:"inputs"`
}

// ParseSpec decodes a YAML input specification. Every input is validated.
func ParseSpec(data []byte) (Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Spec{}, errorc.With(ErrInvalidSpec, errorc.String("cause", err.Error()))
	}
	if len(s.Inputs) == 0 {
		return Spec{}, errorc.With(ErrInvalidSpec, errorc.String("reason", "no inputs"))
	}
	for i, fs := range s.Inputs {
		if err := fs.Validate(); err != nil {
			return Spec{}, errorc.With(
				ErrInvalidSpec,
				errorc.String("input", strconv.Itoa(i)),
				errorc.String("cause", err.Error()),
			)
		}
	}
	return s, nil
}

// LoadSpec reads and decodes the specification stored at path.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, errorc.With(ErrInvalidSpec, errorc.String("path", path), errorc.String("cause", err.Error()))
	}
	return ParseSpec(data)
}
