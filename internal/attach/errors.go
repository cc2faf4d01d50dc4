package attach

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a rejected upload. Status is the HTTP status the caller should
// answer with.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

// ErrOutsideRoot is returned when asked to delete a path that is not under
// the attachment root.
var ErrOutsideRoot = errors.New("path is outside the attachment root")

func invalidType(kind Kind, contentType string, allowed []string) *Error {
	return &Error{
		Status: http.StatusUnsupportedMediaType,
		Detail: fmt.Sprintf("invalid %s format %q, allowed formats: %s", kind, contentType, strings.Join(allowed, ", ")),
	}
}

func oversize(limit int64) *Error {
	return &Error{
		Status: http.StatusRequestEntityTooLarge,
		Detail: fmt.Sprintf("file is too large, the limit is %d MB", limit>>20),
	}
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// upload rejection.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
