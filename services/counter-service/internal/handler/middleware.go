package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/httpx"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/services/counter-service/internal/service"
)

const (
	FusedKeyHeader     = "x-fused-key"
	RandomStringHeader = "x-random-string"

	adminRole = "admin"
)

// FusedKeyAuth rejects requests whose fused key is missing, wrong or
// already used. It is a no-op when no API secret is configured. The key is
// bound to the caller address as resolved through proxies.
func FusedKeyAuth(auth service.AuthService, proxies httpx.TrustedProxies, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth == nil || !auth.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			err := auth.Verify(r.Context(),
				r.Header.Get(FusedKeyHeader),
				r.Header.Get(RandomStringHeader),
				proxies.ClientIP(r),
			)
			if err != nil {
				httpx.Fail(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuth accepts HS256 bearer tokens carrying role=admin.
type AdminAuth struct {
	secret []byte
	issuer string
	logger *logger.Logger
}

func NewAdminAuth(secret, issuer string, log *logger.Logger) *AdminAuth {
	return &AdminAuth{
		secret: []byte(secret),
		issuer: issuer,
		logger: log.With("component", "admin-auth"),
	}
}

func (a *AdminAuth) parse(raw string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, apperrors.Wrap(err, apperrors.CodeUnauthorized, "invalid admin token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid admin token")
	}
	if role, _ := claims["role"].(string); role != adminRole {
		return nil, apperrors.New(apperrors.CodeForbidden, "admin role required")
	}
	return claims, nil
}

func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.secret) == 0 {
			httpx.Fail(w, r, a.logger, apperrors.New(apperrors.CodeMisconfigured, "admin routes are disabled"))
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httpx.Fail(w, r, a.logger, apperrors.New(apperrors.CodeUnauthorized, "missing bearer token"))
			return
		}

		claims, err := a.parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httpx.Fail(w, r, a.logger, err)
			return
		}

		sub, _ := claims["sub"].(string)
		a.logger.Info("Admin request", "subject", sub, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// IssueAdminToken signs an admin token for subject valid for ttl.
func IssueAdminToken(secret, issuer, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": adminRole,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
