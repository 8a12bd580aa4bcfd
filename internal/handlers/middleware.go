package handlers

import (
	"errors"
	"net/http"
	"strings"

	"finance_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// Context key under which the auth gate stores the authenticated user id.
const userIDKey = "userId"

const (
	msgNoToken      = "no token found"
	msgInvalidToken = "invalid token"
	msgTokenExpired = "token expired"
	msgBadPayload   = "invalid token payload"
)

// authGate admits requests carrying a valid access token and rejects
// everything else, terminal on the first failure. The verdict from
// VerifyAccessToken is mapped exhaustively; unknown failures are internal.
func (h *Handler) authGate(c *gin.Context) {
	// Exactly one Authorization header; duplicates are as bad as none.
	headers := c.Request.Header.Values("Authorization")
	if len(headers) != 1 || headers[0] == "" {
		h.rejectAuth(c, http.StatusUnauthorized, msgNoToken)
		return
	}

	parts := strings.SplitN(headers[0], " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		h.rejectAuth(c, http.StatusUnauthorized, msgNoToken)
		return
	}

	userID, err := h.services.VerifyAccessToken(parts[1])
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			h.rejectAuth(c, http.StatusUnauthorized, msgTokenExpired)
		case errors.Is(err, service.ErrTokenInvalid):
			h.rejectAuth(c, http.StatusUnauthorized, msgInvalidToken)
		case errors.Is(err, service.ErrTokenPayload):
			h.rejectAuth(c, http.StatusUnauthorized, msgBadPayload)
		default:
			if h.log != nil {
				h.log.Errorw("auth_gate_verification_failed", "err", err)
			}
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

func (h *Handler) rejectAuth(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"status": "fail", "msg": msg})
}

// currentUserID reads the id the auth gate attached to the request.
func currentUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
