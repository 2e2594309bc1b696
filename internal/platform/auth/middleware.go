package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxUserIDKey = "ec_number"
	CtxRoleKey   = "role"

	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": "UNAUTHENTICATED", "message": msg}})
}

// RequireAuth: Authorization: Bearer <token> を検証して context に sub(ec_number)/role を詰める
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			abort(c, http.StatusUnauthorized, "missing Authorization header")
			return
		}
		scheme, tokenStr, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
			abort(c, http.StatusUnauthorized, "invalid Authorization header")
			return
		}

		var cl claims
		// alg 固定（none攻撃とか回避）
		token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenStr), &cl, func(t *jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		if cl.Subject == "" {
			abort(c, http.StatusUnauthorized, "missing sub")
			return
		}

		c.Set(CtxUserIDKey, cl.Subject)
		c.Set(CtxRoleKey, cl.Role)
		c.Next()
	}
}

// RequireRole: reports など admin 専用ルートに付ける
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		if r != "" {
			allowed[r] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		role := c.GetString(CtxRoleKey)
		if _, ok := allowed[role]; !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": gin.H{"code": "FORBIDDEN", "message": "admin privileges required"}})
			return
		}
		c.Next()
	}
}

// Subject returns the authenticated ec_number, or "" outside RequireAuth.
func Subject(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

// CanActFor reports whether the caller may operate on ecNumber's data:
// their own, or anyone's when admin.
func CanActFor(c *gin.Context, ecNumber string) bool {
	if ecNumber == "" {
		return false
	}
	if c.GetString(CtxRoleKey) == RoleAdmin {
		return true
	}
	return Subject(c) == ecNumber
}
