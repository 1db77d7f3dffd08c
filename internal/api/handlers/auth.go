package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"

	"github.com/playmatatu/ballsim/internal/admin"
	"github.com/playmatatu/ballsim/internal/config"
)

const operatorKey = "operator"

// OperatorClaims is the JWT payload issued to operators
type OperatorClaims struct {
	Operator string   `json:"operator"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// IssueOperatorToken signs an HS256 token for the operator
func IssueOperatorToken(cfg *config.Config, operator string, roles []string) (string, time.Time, error) {
	ttl := time.Duration(cfg.OperatorTokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	exp := time.Now().Add(ttl)
	claims := OperatorClaims{
		Operator: operator,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign operator token: %w", err)
	}
	return signed, exp, nil
}

// ParseOperatorToken validates a token and returns the operator name
func ParseOperatorToken(cfg *config.Config, token string) (string, error) {
	var claims OperatorClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Operator == "" {
		return "", errors.New("token carries no operator")
	}
	return claims.Operator, nil
}

// OperatorLogin exchanges name + token for a JWT
func OperatorLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "operator accounts unavailable"})
			return
		}

		var req struct {
			Name  string `json:"name"`
			Token string `json:"token"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and token required"})
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" || req.Token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and token required"})
			return
		}

		op, err := admin.ValidateOperatorCredentials(db, name, req.Token)
		if err != nil {
			admin.LogOperatorAction(db, name, c.ClientIP(), c.FullPath(), "login", nil, false)
			if errors.Is(err, admin.ErrOperatorNotFound) || errors.Is(err, admin.ErrInvalidToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		signed, exp, err := IssueOperatorToken(cfg, op.Name, op.Roles)
		if err != nil {
			log.Printf("[API] %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		admin.LogOperatorAction(db, op.Name, c.ClientIP(), c.FullPath(), "login", nil, true)
		c.JSON(http.StatusOK, gin.H{"token": signed, "expires_at": exp.Format(time.RFC3339), "operator": gin.H{"name": op.Name, "roles": op.Roles}})
	}
}

// OperatorAuthMiddleware validates a bearer JWT and sets the operator in context
func OperatorAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		operator, err := ParseOperatorToken(cfg, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(operatorKey, operator)
		c.Next()
	}
}

// operatorFrom returns the authenticated operator, or "" on public routes
func operatorFrom(c *gin.Context) string {
	return c.GetString(operatorKey)
}
