package state

import (
	"context"
)

const (
	CurrentUserIP = "CurrentIP"
)

// CurrentIP returns the caller IP claimed by the middleware, if any.
func CurrentIP(ctx context.Context) string {
	value := ctx.Value(CurrentUserIP)
	if value == nil {
		return ""
	}

	ip, ok := value.(string)
	if !ok {
		return ""
	}
	return ip
}
