package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"smallledger/internal/core"
)

type userKey struct{}

// withAuth validates the Bearer token and loads the user into the request
// context. Any failure is the same generic 401.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		user, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, user)
		next(w, r.WithContext(ctx))
	}
}

// currentUser returns the authenticated user placed by withAuth.
func currentUser(r *http.Request) core.User {
	user, _ := r.Context().Value(userKey{}).(core.User)
	return user
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
