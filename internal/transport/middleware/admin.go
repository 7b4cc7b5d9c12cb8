package middleware

import (
	"context"

	"github.com/snappword/snappword-backend/internal/domain"
	"github.com/snappword/snappword-backend/pkg/ctxutil"
)

// RequireAdmin guards the admin console endpoints. It is called from the
// handlers themselves rather than wrapped as middleware because admin and
// user routes share the same mux.
func RequireAdmin(ctx context.Context) error {
	if !ctxutil.IsAdminCtx(ctx) {
		return domain.ErrForbidden
	}
	return nil
}
