package core

import "context"

// Requester identifies the client behind a conversion. It is stored on the
// history record and never used for access control.
type Requester struct {
	IP        string
	UserAgent string
}

type requesterKey struct{}

// WithRequester attaches r to ctx.
func WithRequester(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, requesterKey{}, r)
}

// RequesterFrom returns the requester attached to ctx, or the zero value
// for conversions that did not come through HTTP.
func RequesterFrom(ctx context.Context) Requester {
	r, _ := ctx.Value(requesterKey{}).(Requester)
	return r
}
