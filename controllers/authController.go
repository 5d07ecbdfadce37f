package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Kariqs/tableside/backend"
	"github.com/Kariqs/tableside/middlewares"
	"github.com/Kariqs/tableside/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// Standard response messages
	msgInvalidInput          = "invalid input"
	msgInvalidCredentials    = "invalid email or password"
	msgAdminRequired         = "Admin access required"
	msgFailedToGenerateToken = "failed to generate token"
	msgInternalServerError   = "Internal server error"
	msgLoggedIn              = "Logged in successfully."
	msgLoggedOut             = "Logged out successfully."
	msgUnsafeInput           = "input contains scripts or event handlers"
	msgBackendUnavailable    = "The restaurant service is unavailable. Try again later."
	msgBadBackendResponse    = "The restaurant service sent an unexpected response."
)

const upstreamClaim = "upstream"

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

// generateJWT signs the admin session. The backend session cookie rides in
// the claims so admin calls can be forwarded on the user's behalf.
func (c *Controller) generateJWT(user models.AdminUser, upstream string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     user.UserID.String(),
		"email":       user.Email,
		"username":    user.Name,
		"role":        user.Role,
		upstreamClaim: upstream,
		"iat":         now.Unix(),
		"exp":         now.Add(c.tokenTTL).Unix(),
	})
	return token.SignedString(c.jwtSecret)
}

func (c *Controller) setAdminCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(middlewares.AdminCookie, token, maxAge, "/", "", c.cookieSecure, true)
}

// upstreamContext returns the request context carrying the admin's backend
// session.
func upstreamContext(ctx *gin.Context) context.Context {
	reqCtx := ctx.Request.Context()
	value, _ := ctx.Get("user")
	claims, ok := value.(jwt.MapClaims)
	if !ok {
		return reqCtx
	}
	cookie, _ := claims[upstreamClaim].(string)
	return backend.WithUpstreamAuth(reqCtx, cookie)
}

func (c *Controller) AdminLogin(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	reqCtx := ctx.Request.Context()
	upstream, err := c.backend.Login(reqCtx, loginData)
	if err != nil {
		if backend.IsClientError(err) {
			sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		c.respondBackendError(ctx, "admin_login_failed", err)
		return
	}

	user, err := c.backend.Me(backend.WithUpstreamAuth(reqCtx, upstream))
	if err != nil {
		c.respondBackendError(ctx, "admin_profile_failed", err)
		return
	}
	if user.Role != models.RoleAdmin {
		sendErrorResponse(ctx, http.StatusForbidden, msgAdminRequired)
		return
	}

	token, err := c.generateJWT(user, upstream)
	if err != nil {
		c.log.Error(reqCtx, "admin_token_failed", "could not sign admin token", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}
	c.setAdminCookie(ctx, token, int(c.tokenTTL.Seconds()))

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": msgLoggedIn,
		"token":   token,
		"user":    user,
	})
}

func (c *Controller) AdminLogout(ctx *gin.Context) {
	reqCtx := upstreamContext(ctx)
	if err := c.backend.Logout(reqCtx); err != nil {
		c.log.Warn(reqCtx, "admin_logout_upstream_failed", "backend logout failed: "+err.Error())
	}
	c.setAdminCookie(ctx, "", -1)
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgLoggedOut})
}

func (c *Controller) AdminMe(ctx *gin.Context) {
	user, err := c.backend.Me(upstreamContext(ctx))
	if err != nil {
		c.respondBackendError(ctx, "admin_profile_failed", err)
		return
	}
	if user.Role != models.RoleAdmin {
		sendErrorResponse(ctx, http.StatusForbidden, msgAdminRequired)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"user": user})
}

// respondBackendError maps collaborator failures: backend 4xx answers pass
// through, everything else is a gateway failure.
func (c *Controller) respondBackendError(ctx *gin.Context, action string, err error) {
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		sendErrorResponse(ctx, apiErr.Status, apiErr.Message)
		return
	case errors.Is(err, backend.ErrMalformedResponse):
		c.log.Error(ctx.Request.Context(), action, "malformed backend response", err)
		sendErrorResponse(ctx, http.StatusBadGateway, msgBadBackendResponse)
		return
	}
	c.log.Error(ctx.Request.Context(), action, "backend call failed", err)
	sendErrorResponse(ctx, http.StatusBadGateway, msgBackendUnavailable)
}
