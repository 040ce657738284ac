package http

import (
	"regexp"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// AllowOrigin decides whether a cross-origin caller may use the API. Outside
// production every origin is allowed. In production an empty origin
// (same-origin or non-browser client) is allowed and anything else must match
// the allow-list.
func AllowOrigin(origin string, production bool, allowed *regexp.Regexp) bool {
	if !production || origin == "" {
		return true
	}
	return allowed != nil && allowed.MatchString(origin)
}

// originPolicy applies AllowOrigin through gin-contrib/cors. Disallowed
// origins are rejected with 403 before reaching any handler.
func originPolicy(production bool, allowed *regexp.Regexp) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return AllowOrigin(origin, production, allowed)
		},
		AllowMethods:     []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
