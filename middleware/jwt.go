package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"infraspend/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ContextUserID holds the authenticated user id in the gin context.
	ContextUserID = "userID"
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "session_token"

	issuer = "infraspend"
)

// Claims session token claims
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var jwtSecret []byte

// InitJWT sets the signing secret
func InitJWT(cfg *config.Config) {
	jwtSecret = []byte(cfg.JWT.Secret)
}

// GenerateToken signs a session token valid for ttl
func GenerateToken(userID uint, username string, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("jwt secret not initialized")
	}
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ParseToken verifies signature, algorithm and expiry
func ParseToken(tokenString string) (*Claims, error) {
	if len(jwtSecret) == 0 {
		return nil, errors.New("jwt secret not initialized")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		return jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// tokenFromRequest reads "Authorization: Bearer <token>", falling back to the
// session cookie when the header is absent.
func tokenFromRequest(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", false
		}
		token := strings.TrimSpace(parts[1])
		return token, token != ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

// JWTAuth rejects requests without a valid session token
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := tokenFromRequest(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		claims, err := ParseToken(token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// GetCurrentUserID returns the authenticated user id, or 0
func GetCurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"status": "error", "message": message})
}
