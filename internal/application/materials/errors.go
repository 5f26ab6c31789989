package materials

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid material input")
	ErrSourceNotVerified = errors.New("Source not verified")
	ErrMaterialNotFound  = errors.New("Material not found")
	ErrPredictionFailed  = errors.New("Prediction failed")
)

// ValidationError carries per-field messages and matches ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid material input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
