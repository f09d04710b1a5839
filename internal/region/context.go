package region

import (
	"context"

	"regional-storefront-go/pkg/model"
)

type contextKey string

const codeKey contextKey = "region_code"

// WithCode returns a copy of ctx carrying the resolved region code.
func WithCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, codeKey, code)
}

// CodeFromContext returns the region code stored by WithCode, or the
// default region when there is none.
func CodeFromContext(ctx context.Context) string {
	if code, ok := ctx.Value(codeKey).(string); ok && code != "" {
		return code
	}
	return model.DefaultRegionCode
}
