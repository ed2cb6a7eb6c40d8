package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

// withRequestMetadata attaches the client IP and User-Agent to ctx so
// conversion history can record them.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.WithRequester(ctx, core.Requester{IP: clientIP(r), UserAgent: r.UserAgent()})
}
