package errordata

import (
	"context"
	"fmt"
)

// ErrorData carries the user-facing failure phrasing for one request. The
// handler installs it, the service layer fills it in at the point of failure,
// and the handler prefers it over a generic message when building the
// response body. Internal error detail never travels through here.
type key struct{}

var errorDataKey key

type ErrorData struct {
	Message string
}

func WithErrorData(ctx context.Context) context.Context {
	ed := &ErrorData{Message: ""}
	return context.WithValue(ctx, errorDataKey, ed)
}

func GetErrorData(ctx context.Context) *ErrorData {
	val := ctx.Value(errorDataKey)
	ed, ok := val.(*ErrorData)
	if !ok {
		return nil
	}
	return ed
}

func (ed *ErrorData) SetMessage(msg string) {
	ed.Message = msg
}

func (ed *ErrorData) SetMessagef(format string, args ...interface{}) {
	ed.Message = fmt.Sprintf(format, args...)
}

func (ed *ErrorData) HasMessage() bool {
	return ed.Message != ""
}

// SetUserMessage is a convenience for service code: it is a no-op when the
// context has no ErrorData installed (background jobs, tests).
func SetUserMessage(ctx context.Context, msg string) {
	if ed := GetErrorData(ctx); ed != nil {
		ed.SetMessage(msg)
	}
}
