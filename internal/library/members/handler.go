package members

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

// RegisterStaffRoutes mounts member and fine administration.
func RegisterStaffRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 1. 会員
	r.GET("/admin/add-member", h.AddMemberForm)
	r.POST("/admin/add-member", h.CreateMember)
	r.GET("/admin/view-members", h.ListMembers)
	r.GET("/admin/edit-member/:id", h.GetMember)
	r.POST("/admin/edit-member/:id", h.UpdateMember)
	r.GET("/admin/delete-member/:id", h.DeleteMember)

	// 2. 罰金
	r.GET("/admin/fines", h.ListFines)
	r.GET("/admin/fine/add", h.FineForm)
	r.POST("/admin/fine/add", h.CreateFine)
	r.GET("/admin/fine/delete/:id", h.DeleteFine)
}

// RegisterMemberRoutes mounts the member's own fine list under /member.
func RegisterMemberRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/my-fines", h.MyFines)
}

// ===== members =====

func (h *Handler) AddMemberForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": []string{"username", "email", "password"}})
}

func (h *Handler) CreateMember(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	res, err := h.svc.CreateMember(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.Header("Location", "/admin/edit-member/"+strconv.FormatInt(res.ID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListMembers(c *gin.Context) {
	res, err := h.svc.ListMembers(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": res})
}

func (h *Handler) GetMember(c *gin.Context) {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	res, err := h.svc.GetMember(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateMember(c *gin.Context) {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	var req UpdateMemberRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	res, err := h.svc.UpdateMember(c.Request.Context(), id, req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteMember(c *gin.Context) {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	if err := h.svc.DeleteMember(c.Request.Context(), id); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== fines =====

func (h *Handler) ListFines(c *gin.Context) {
	res, err := h.svc.ListFines(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) FineForm(c *gin.Context) {
	res, err := h.svc.FineForm(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CreateFine(c *gin.Context) {
	var req CreateFineRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	res, err := h.svc.CreateFine(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) DeleteFine(c *gin.Context) {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	if err := h.svc.DeleteFine(c.Request.Context(), id); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /member/my-fines
func (h *Handler) MyFines(c *gin.Context) {
	ident, ok := auth.CurrentIdentity(c)
	if !ok {
		httpx.WriteError(c, apierr.ErrUnauthenticated("no session"))
		return
	}
	res, err := h.svc.MyFines(c.Request.Context(), ident)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
