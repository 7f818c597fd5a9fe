package media

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Resolver turns candidate photo references into URLs a client can load.
// Absolute http(s) URLs pass through; anything else is treated as an object
// key and presigned. References that cannot be signed are dropped.
type Resolver struct {
	presigner Presigner
	ttl       time.Duration
	logger    *zap.Logger
}

func NewResolver(presigner Presigner, ttl time.Duration, logger *zap.Logger) *Resolver {
	if ttl <= 0 {
		ttl = signedURLTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{presigner: presigner, ttl: ttl, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if isAbsoluteURL(ref) {
			out = append(out, ref)
			continue
		}
		if r.presigner == nil {
			continue
		}
		signed, err := r.presigner.PresignGet(ctx, ref, r.ttl)
		if err != nil {
			r.logger.Warn("presign photo failed", zap.String("key", ref), zap.Error(err))
			continue
		}
		out = append(out, signed)
	}
	return out
}

func isAbsoluteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}
