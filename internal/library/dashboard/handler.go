package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/httpx"
	"library-backend/internal/platform/observability"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts GET /dashboard. The router mounts it once per role
// group (/admin, /employee, /member), each behind its own role guard.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/dashboard", h.Dashboard)
}

type response struct {
	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
	Stats    Stats     `json:"stats"`
	Degraded bool      `json:"degraded,omitempty"`
}

// Dashboard always answers 200. A failed count is logged and reported as zero.
func (h *Handler) Dashboard(c *gin.Context) {
	id, ok := auth.CurrentIdentity(c)
	if !ok {
		httpx.WriteError(c, apierr.ErrUnauthenticated("no session"))
		return
	}
	st, err := h.svc.Stats(c.Request.Context(), id)
	resp := response{Username: id.Username, Role: id.Role, Stats: st}
	if err != nil {
		observability.Entry(c).WithError(err).Warn("dashboard stats unavailable")
		resp.Degraded = true
	}
	c.JSON(http.StatusOK, resp)
}
