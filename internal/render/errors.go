package render

import "fmt"

// ClipRenderError reports a failure to produce a clip, either because the
// request was unrenderable (bad frame rate, empty selection, oversize
// window) or because encoding itself failed.
type ClipRenderError struct {
	Reason string
	Err    error
}

func (e *ClipRenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("clip render failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("clip render failed: %s", e.Reason)
}

func (e *ClipRenderError) Unwrap() error { return e.Err }

func clipErrorf(format string, args ...interface{}) *ClipRenderError {
	return &ClipRenderError{Reason: fmt.Sprintf(format, args...)}
}
