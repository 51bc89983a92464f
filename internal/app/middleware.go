package app

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/internal/auth"
	"github.com/statsbudsjett/statsbudsjett/internal/rest"
	"github.com/statsbudsjett/statsbudsjett/pkg/user"
)

// UserMiddleware resolves the CMS user and puts it into the request context.
// With a signing secret configured only bearer tokens identify a user and the
// X-User-Id header is refused. Without one, as in local development, the
// header is the identity. Requests without either pass through without a user.
func UserMiddleware(validator auth.TokenValidator, users user.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			var uid string
			if validator.Enabled() {
				header := req.Header.Get("Authorization")
				if header == "" && req.Header.Get("X-User-Id") != "" {
					log.Warnf("X-User-Id header refused from %s, a bearer token is required", req.RemoteAddr)
					rest.WriteError(w, http.StatusUnauthorized, "Bearer token required")
					return
				}
				if header != "" {
					token, err := auth.BearerToken(header)
					if err != nil {
						rest.WriteError(w, http.StatusUnauthorized, err.Error())
						return
					}
					uid, err = validator.Validate(token)
					if err != nil {
						log.Debugf("rejected token: %v", err)
						rest.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
						return
					}
				}
			} else {
				uid = req.Header.Get("X-User-Id")
			}

			if uid != "" {
				u, err := users.GetUserByUid(ctx, uid)
				if errors.Is(err, user.ErrUserNotFound) {
					log.Debugf("user not found: %s", uid)
					rest.WriteError(w, http.StatusForbidden, "user not found")
					return
				} else if err != nil {
					log.Errorf("failed to get user: %v", err)
					rest.WriteError(w, http.StatusInternalServerError, "failed to get user")
					return
				}
				log.Debugf("user found: %s", u.Uid)
				ctx = user.WithUser(ctx, u)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
