package handlers

import (
	"errors"
	"net/http"
	"time"

	"finance_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	refreshCookieName   = "refreshToken"
	refreshCookieMaxAge = int(5 * 24 * time.Hour / time.Second)
)

type registerRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

// loginRequest checks shape only; the stored digest is the judge of the
// password itself.
type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// bindJSONOrFieldErrors binds the body into dst and writes a 400 with
// field-scoped errors on failure. Returns false if already handled.
func (h *Handler) bindJSONOrFieldErrors(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "errors": fieldErrors(err)})
		return false
	}
	return true
}

// setRefreshCookie delivers the refresh token the only way it ever
// travels: HTTP-only, secure, same-site strict, 5-day max-age.
func setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, refreshCookieMaxAge, "/", "", true, true)
}

// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  registerRequest  true  "Registration payload"
// @Success      200  {object}  map[string]interface{}  "status, msg, accessToken"
// @Failure      400  {object}  map[string]interface{}  "field errors"
// @Failure      409  {object}  map[string]string
// @Router       /api/register [post]
func (h *Handler) register(c *gin.Context) {
	var input registerRequest
	if ok := h.bindJSONOrFieldErrors(c, &input); !ok {
		return
	}

	user, pair, err := h.services.Register(c.Request.Context(), service.RegisterParams{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"status": "fail", "msg": "email already exists"})
			return
		}
		h.logAndInternalError(c, "auth_register_failed", err, "email", input.Email)
		return
	}

	if h.log != nil {
		h.log.Infow("user_registered", "userId", user.ID)
	}
	setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"msg":         "user has been registered successfully",
		"accessToken": pair.AccessToken,
	})
}

// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  loginRequest  true  "Login payload"
// @Success      200  {object}  map[string]interface{}  "status, msg, accessToken"
// @Failure      400  {object}  map[string]interface{}  "field errors"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/login [post]
func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if ok := h.bindJSONOrFieldErrors(c, &input); !ok {
		return
	}

	user, pair, err := h.services.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotFound):
			c.JSON(http.StatusNotFound, gin.H{"status": "fail", "msg": "email not found"})
		case errors.Is(err, service.ErrInvalidPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "msg": "password is incorrect"})
		default:
			h.logAndInternalError(c, "auth_login_failed", err, "email", input.Email)
		}
		return
	}

	if h.log != nil {
		h.log.Infow("user_logged_in", "userId", user.ID)
	}
	setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"msg":         "user has logged in successfully",
		"accessToken": pair.AccessToken,
	})
}

// logAndInternalError logs the cause and answers with a generic 500; the
// cause never leaks to the client.
func (h *Handler) logAndInternalError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	if h.log != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"status": "fail", "msg": "internal error"})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
