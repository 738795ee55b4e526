package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const LocaleKey = "locale"

// LocaleMiddleware resolves the request locale: explicit ?locale wins,
// then the primary Accept-Language subtag, then "en". The payment gateway
// localizes the sessions it issues, so the locale is part of the cart
// fingerprint downstream.
func LocaleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		locale := strings.TrimSpace(ctx.Query("locale"))
		if locale == "" {
			locale = primarySubtag(ctx.GetHeader("Accept-Language"))
		}
		if locale == "" {
			locale = "en"
		}
		ctx.Set(LocaleKey, strings.ToLower(locale))
		ctx.Next()
	}
}

func primarySubtag(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	first := strings.Split(header, ",")[0]
	first = strings.Split(first, ";")[0]
	first = strings.Split(first, "-")[0]
	return strings.TrimSpace(first)
}
