package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	BrowserCookie     = "tableside_browser"
	browserIDKey      = "browserID"
	browserCookieLife = 365 * 24 * 60 * 60
)

// BrowserSession identifies the browser with a long-lived opaque cookie.
// Carts and table sessions are keyed by this id.
func BrowserSession(secure bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := ctx.Cookie(BrowserCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		ctx.SetSameSite(http.SameSiteLaxMode)
		ctx.SetCookie(BrowserCookie, id, browserCookieLife, "/", "", secure, true)
		ctx.Set(browserIDKey, id)
		ctx.Next()
	}
}

func BrowserID(ctx *gin.Context) string {
	return ctx.GetString(browserIDKey)
}
