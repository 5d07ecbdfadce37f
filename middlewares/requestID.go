package middlewares

import (
	"github.com/Kariqs/tableside/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or mints one, echoes it on the
// response and makes it available to the logger through the request context.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		ctx.Header(RequestIDHeader, id)
		ctx.Request = ctx.Request.WithContext(logger.WithRequestID(ctx.Request.Context(), id))
		ctx.Next()
	}
}
