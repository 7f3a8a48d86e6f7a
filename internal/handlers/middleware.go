package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aoki-blog/apiserver/internal/auth"
	"github.com/aoki-blog/apiserver/internal/validate"
	"github.com/aoki-blog/apiserver/types"
	"github.com/go-chi/chi/v5"
)

type contextKey string

const (
	contextPrincipalKey contextKey = "principal"
	contextValuesKey    contextKey = "values"
)

// RequireUser builds middleware that admits any request carrying a valid
// bearer token and attaches the decoded principal to the context. A missing
// or malformed Authorization header is a 400 before the token service is
// consulted; any verification failure is a 401.
func RequireUser(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return requirePrincipal(tokens, false)
}

// RequireAdmin builds middleware with all of RequireUser's checks plus a
// 401 rejection of principals without the administrator flag.
func RequireAdmin(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return requirePrincipal(tokens, true)
}

func requirePrincipal(tokens *auth.TokenService, elevated bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, "missing or malformed authorization header")
				return
			}

			principal, err := tokens.Verify(tokenString)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			if elevated && !principal.IsAdmin {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), contextPrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validation builds middleware that decodes the JSON body and runs the
// pipeline against it. On any field error the request stops with the full
// error batch and the raw values echoed back; on success the sanitized
// values are attached to the context. Validation always runs before any
// authorization gate on the route.
func validation(pipeline *validate.Pipeline) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			values, errs := pipeline.Run(body)
			if len(errs) > 0 {
				writeJSON(w, http.StatusBadRequest, ValidationResponse{
					Message:          "invalid input",
					ValidationErrors: errs,
					PostVals:         body,
				})
				return
			}

			ctx := context.WithValue(r.Context(), contextValuesKey, values)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func principalFromContext(ctx context.Context) (types.Principal, bool) {
	principal, ok := ctx.Value(contextPrincipalKey).(types.Principal)
	return principal, ok
}

func valuesFromContext(ctx context.Context) validate.Values {
	values, _ := ctx.Value(contextValuesKey).(validate.Values)
	return values
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}

// parseID reads a numeric path parameter. Anything that is not a positive
// integer reads as a miss, so opaque-looking ids never leak shape through a
// different status code.
func parseID(r *http.Request, param string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
