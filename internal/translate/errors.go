package translate

import (
	"errors"
	"fmt"
)

// ErrTranslation is matched by every *Error.
var ErrTranslation = errors.New("translation failed")

// Pipeline stages reported by Error.
const (
	StageGraph   = "graph"
	StageHoist   = "hoist"
	StageSort    = "sort"
	StageRewrite = "rewrite"
)

// Error is a failure after parsing, tagged with the pipeline stage it
// happened in.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTranslation.
func (e *Error) Is(target error) bool {
	return target == ErrTranslation
}
