package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/tableside/middlewares"
	"github.com/Kariqs/tableside/session"
	"github.com/gin-gonic/gin"
)

// BindSession links the browser to the table whose QR code was scanned.
func (c *Controller) BindSession(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	changed, err := c.sessions.Bind(reqCtx, middlewares.BrowserID(ctx), ctx.Param("sessionToken"))
	switch {
	case errors.Is(err, session.ErrNoSession):
		sendErrorResponse(ctx, http.StatusBadRequest, "Missing table code")
		return
	case errors.Is(err, session.ErrInvalidSession):
		sendErrorResponse(ctx, http.StatusNotFound, "This table code is not valid. Please scan the QR code again.")
		return
	case err != nil:
		c.log.Error(reqCtx, "session_bind_failed", "could not link table", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": "Table linked",
		"changed": changed,
	})
}

func (c *Controller) GetSession(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	browserID := middlewares.BrowserID(ctx)

	_, err := c.sessions.Token(reqCtx, browserID)
	if errors.Is(err, session.ErrNoSession) {
		sendJSONResponse(ctx, http.StatusOK, gin.H{"bound": false, "hasCartHandle": false})
		return
	}
	if err != nil {
		c.log.Error(reqCtx, "session_read_failed", "could not read table link", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	_, err = c.sessions.CartHandle(reqCtx, browserID)
	if err != nil && !errors.Is(err, session.ErrNoCartHandle) {
		c.log.Error(reqCtx, "session_read_failed", "could not read cart handle", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"bound": true, "hasCartHandle": err == nil})
}
