package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/abastecio/abastecio-backend/api/responses"
	pkgAuth "github.com/abastecio/abastecio-backend/pkg/auth"
	"github.com/abastecio/abastecio-backend/pkg/config"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
	"github.com/abastecio/abastecio-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseOperatorToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxOperatorID, claims.OperatorID())
			if claims.Name != "" {
				ctx = context.WithValue(ctx, ctxOperatorName, claims.Name)
			}

			if logg != nil {
				fields := map[string]any{
					"operator_id": claims.OperatorID(),
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
