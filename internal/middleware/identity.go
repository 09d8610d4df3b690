package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/daystreak/api/internal/modules/serializer"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	UserIDHeader = "X-User-ID"
	UserIDKey    = "user_id"
)

// Identity resolves the calling user from the X-User-ID header, falling back
// to the user_id query parameter, and stores it on the context under UserIDKey.
// Authentication happens upstream; this only rejects anonymous requests.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			userID = strings.TrimSpace(c.Query(UserIDKey))
		}
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, serializer.ParamErr("", errors.New("missing user id")))
			return
		}

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			span.SetAttributes(attribute.String("user_id", userID))
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
