package middleware

import (
	"crypto/subtle"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tunebox/songreview/internal/logger"
)

const InternalKeyHeader = "X-Internal-Key"

var (
	sqlPatterns = compile(
		`(?i)(union\s+select)`,
		`(?i)(insert\s+into)`,
		`(?i)(delete\s+from)`,
		`(?i)(drop\s+table)`,
		`(?i)(truncate\s+)`,
		`(?i)(update\s+set)`,
		`(?i)(';\s*--)`,
		`(?i)(or\s+1\s*=\s*1)`,
		`(?i)(or\s+'1'\s*=\s*'1)`,
		`(?i)(;\s*drop)`,
	)
	xssPatterns = compile(
		`(?i)(<script)`,
		`(?i)(javascript:)`,
		`(?i)(onerror\s*=)`,
		`(?i)(onload\s*=)`,
		`(?i)(<iframe)`,
		`(?i)(onclick\s*=)`,
		`(?i)(onmouseover\s*=)`,
	)
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

func SanitizeString(input string) string {
	if CheckXSSPatterns(input) || CheckSQLInjectionPatterns(input) {
		return ""
	}
	return strings.TrimSpace(html.EscapeString(input))
}

func CheckSQLInjectionPatterns(input string) bool {
	for _, p := range sqlPatterns {
		if p.MatchString(input) {
			return true
		}
	}
	return false
}

func CheckXSSPatterns(input string) bool {
	for _, p := range xssPatterns {
		if p.MatchString(input) {
			return true
		}
	}
	return false
}

// QueryGuard rejects requests whose decoded query string carries injection patterns.
func QueryGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawQuery, _ := url.QueryUnescape(c.Request.URL.RawQuery)
		if CheckXSSPatterns(rawQuery) || CheckSQLInjectionPatterns(rawQuery) {
			logger.Warn(logger.EventValidationFailure, "Malicious pattern detected in query string", logger.Fields(
				"ip", c.ClientIP(),
				"raw_query", rawQuery,
			))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid or potentially malicious input detected"})
			return
		}
		c.Next()
	}
}

// InternalOnly admits service-to-service calls carrying the shared key.
func InternalOnly(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(InternalKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			logger.Security(logger.EventAccessDenied, "Internal endpoint called without valid key", logger.Fields(
				"ip", c.ClientIP(),
				"path", c.FullPath(),
			))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid internal key"})
			return
		}
		c.Next()
	}
}
