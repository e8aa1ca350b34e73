package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUsernameKey = "username"
	CtxRoleKey     = "role"
	ctxSessionKey  = "session"

	LoginPath = "/login"
)

// tokenFromRequest reads the session cookie, falling back to a Bearer header.
func tokenFromRequest(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginPath)
	c.Abort()
}

// RequireSession validates the session and stores the identity in the
// context. Anonymous requests are sent to the login page.
func RequireSession(sm *SessionManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sm.Parse(tokenFromRequest(c, cookieName))
		if err != nil {
			redirectToLogin(c)
			return
		}
		SetSession(c, sess)
		c.Next()
	}
}

// SetSession binds sess to the request context.
func SetSession(c *gin.Context, sess Session) {
	c.Set(ctxSessionKey, sess)
	c.Set(CtxUsernameKey, sess.Identity.Username)
	c.Set(CtxRoleKey, string(sess.Identity.Role))
}

// RequireRole admits only the listed roles. Must run after RequireSession.
func RequireRole(roles ...Role) gin.HandlerFunc {
	allowed := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			redirectToLogin(c)
			return
		}
		if _, ok := allowed[id.Role]; !ok {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

// NoStore keeps privileged pages out of browser and proxy caches so the back
// button cannot show them after logout.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}

// CurrentIdentity returns the identity bound by RequireSession.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ctxSessionKey)
	if !ok {
		return Identity{}, false
	}
	sess, ok := v.(Session)
	if !ok {
		return Identity{}, false
	}
	return sess.Identity, true
}
