package httpt

import (
	"errors"
	"net/http"
	"strings"

	"meetpay/internal/entity"
	"meetpay/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	_ctxUserID   = "auth_user_id"
	_ctxUserRole = "auth_user_role"

	_bearerPrefix = "Bearer "
)

type authClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// authMiddleware authenticates the caller from a bearer token issued by the
// platform's auth service and stashes the identity in the gin context.
// Everything under /api requires it.
func (h *PaymentHandler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, _bearerPrefix) {
			h.rejectUnauthenticated(c, "missing bearer token")
			return
		}

		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(
			strings.TrimPrefix(header, _bearerPrefix),
			claims,
			func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return h.jwtSecret, nil
			},
		)
		if err != nil || !token.Valid {
			h.rejectUnauthenticated(c, "invalid token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil || userID == uuid.Nil {
			h.rejectUnauthenticated(c, "token has no usable subject")
			return
		}

		c.Set(_ctxUserID, userID)
		c.Set(_ctxUserRole, entity.Role(claims.Role))

		c.Next()
	}
}

func (h *PaymentHandler) rejectUnauthenticated(c *gin.Context, reason string) {
	log := h.log.Ctx(c.Request.Context())
	log.LogAttrs(c.Request.Context(), logger.WarnLevel, "request rejected",
		logger.String("reason", reason),
		logger.String("path", c.Request.URL.Path),
		logger.String("client_ip", c.ClientIP()),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
}

func callerIdentity(c *gin.Context) (uuid.UUID, entity.Role) {
	userID, _ := c.MustGet(_ctxUserID).(uuid.UUID)
	role, _ := c.MustGet(_ctxUserRole).(entity.Role)
	return userID, role
}
