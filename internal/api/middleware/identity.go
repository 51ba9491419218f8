package middleware

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ClientIdentity derives the stable per-caller key the rate limiter needs
// and stores it under "client_id". A valid bearer token's subject wins, so
// authenticated callers keep one budget across addresses; everyone else is
// keyed by forwarded client address. Tokens are optional: a missing or
// invalid one just falls back, it never rejects the request.
func ClientIdentity() gin.HandlerFunc {
	secret := os.Getenv("JWT_SECRET")

	return func(c *gin.Context) {
		c.Set("client_id", deriveClientID(c, secret))
		c.Next()
	}
}

func deriveClientID(c *gin.Context, secret string) string {
	if secret != "" {
		if sub := tokenSubject(c.GetHeader("Authorization"), secret); sub != "" {
			return "sub:" + sub
		}
	}
	return "ip:" + c.ClientIP()
}

func tokenSubject(auth, secret string) string {
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if raw == "" {
		return ""
	}

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || tok == nil || !tok.Valid {
		return ""
	}
	return claims.Subject
}
