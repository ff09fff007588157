package requestdata

import (
  "context"

  "github.com/google/uuid"
)

type key struct{}

var requestDataKey key

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
  return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
  val := ctx.Value(requestDataKey)
  if rd, ok := val.(*RequestData); ok {
    return rd
  }
  return nil
}

// RequestData is the per-request ambient state for this service. The flows
// here are unauthenticated, so it carries correlation data rather than a user
// identity: the request id for log stitching and the client IP the rate
// limiter keys on.
type RequestData struct {
  RequestID     uuid.UUID
  ClientIP      string
}
