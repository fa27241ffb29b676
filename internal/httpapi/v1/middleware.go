// Package v1 contains HTTP handlers and middleware.
package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/arnaudGHB/glconfig/internal/errs"
	"github.com/arnaudGHB/glconfig/internal/ledger"
)

type ctxKey string

const ctxKeyBranch ctxKey = "resolvedBranch"
const ctxKeyConfigure ctxKey = "validatedConfigure"
const ctxKeyUpdate ctxKey = "validatedUpdate"

// resolveBranch resolves the X-Branch-ID header through the branch reader and
// stores the branch identity in the request context.
func (s *Server) resolveBranch() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-Branch-ID")
			if raw == "" {
				badRequest(w, "X-Branch-ID header is required")
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				badRequest(w, "invalid X-Branch-ID")
				return
			}
			branch, err := s.branches.GetBranch(r.Context(), id)
			if err != nil {
				if errors.Is(err, errs.ErrNotFound) {
					badRequest(w, "unknown branch")
				} else {
					writeErr(w, http.StatusInternalServerError, "failed to resolve branch", "")
				}
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyBranch, branch)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateConfigure parses and validates the configure body and stores it in
// the request context for the handler to use.
func (s *Server) validateConfigure() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req configureRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			if req.ProductName == "" || len(req.Mappings) == 0 {
				badRequest(w, "product_name and mappings are required")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyConfigure, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateUpdate parses and validates the update body.
func (s *Server) validateUpdate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req updateRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			if req.ProductName == "" || len(req.Mappings) == 0 {
				badRequest(w, "product_name and mappings are required")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyUpdate, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func branchFrom(ctx context.Context) ledger.Branch {
	b, _ := ctx.Value(ctxKeyBranch).(ledger.Branch)
	return b
}

// actorFrom returns the acting user for audit records.
func actorFrom(r *http.Request) string {
	if u := r.Header.Get("X-User-ID"); u != "" {
		return u
	}
	return "system"
}
