package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/httpx"
	"library-backend/internal/platform/observability"
)

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

type Handler struct {
	svc     *Service
	cookie  CookieOptions
	limiter *LoginLimiter
}

func RegisterRoutes(r gin.IRoutes, svc *Service, cookie CookieOptions, limiter *LoginLimiter) {
	h := &Handler{svc: svc, cookie: cookie, limiter: limiter}
	r.GET("/", h.Index)
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.Register)
}

func (h *Handler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginPath)
}

func (h *Handler) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roles": []Role{RoleAdmin, RoleEmployee, RoleMember}})
}

func (h *Handler) Login(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		observability.RecordLogin("unknown", "throttled")
		httpx.WriteError(c, apierr.ErrRateLimited("too many login attempts, try again later"))
		return
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	token, sess, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.svc.Sessions().Lifetime().Seconds()), "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{
		"username":   sess.Identity.Username,
		"role":       sess.Identity.Role,
		"expires_at": sess.ExpiresAt,
		"redirect":   sess.Identity.Role.DashboardPath(),
	})
}

// Logout clears the session unconditionally.
func (h *Handler) Logout(c *gin.Context) {
	h.svc.Logout(tokenFromRequest(c, h.cookie.Name))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusFound, LoginPath)
}

func (h *Handler) RegisterForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": []string{"username", "email", "password"}})
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	id, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "username": NormalizeUsername(req.Username), "redirect": LoginPath})
}
