package circulation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

// RegisterIssueRoutes mounts the lending desk. The router mounts it under both
// /admin and /employee.
func RegisterIssueRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/issue-book", h.IssueForm)
	r.POST("/issue-book", h.Issue)
	r.GET("/issued-books", h.ListIssued)
	r.GET("/return-book/:id", h.Return)
}

// RegisterStaffReservationRoutes mounts the staff reservation views.
func RegisterStaffReservationRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/view-reservations", h.ListReservations)
	r.GET("/cancel-reservation/:id", h.CancelReservation)
}

// RegisterMemberRoutes mounts the member reservation pages under /member.
func RegisterMemberRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/reserve-book", h.ReserveForm)
	r.POST("/reserve-book", h.Reserve)
	// 自分の予約だけが返る（Service層で会員IDに絞る）
	r.GET("/my-reservations", h.ListReservations)
	r.GET("/cancel-reservation/:id", h.CancelReservation)
}

// ---------- handlers ----------

// GET /<role>/issue-book
func (h *Handler) IssueForm(c *gin.Context) {
	res, err := h.svc.IssueForm(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /<role>/issue-book
func (h *Handler) Issue(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	res, err := h.svc.Issue(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListIssued(c *gin.Context) {
	res, err := h.svc.ListIssued(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issued_books": res})
}

// GET /<role>/return-book/:id
func (h *Handler) Return(c *gin.Context) {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	if err := h.svc.Return(c.Request.Context(), id); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "returned": true})
}

func (h *Handler) ReserveForm(c *gin.Context) {
	res, err := h.svc.ReserveForm(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /member/reserve-book
func (h *Handler) Reserve(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	var req ReserveRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	res, err := h.svc.Reserve(c.Request.Context(), ident, req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.Header("Location", "/member/my-reservations")
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListReservations(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	res, err := h.svc.ListReservations(c.Request.Context(), ident)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": res})
}

func (h *Handler) CancelReservation(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	if err := h.svc.CancelReservation(c.Request.Context(), ident, id); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": StatusCancelled})
}

// ---------- helpers ----------

// identity reads the caller bound by the session guard. The guard always runs
// first, so a miss is a wiring bug.
func identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.CurrentIdentity(c)
	if !ok {
		httpx.WriteError(c, apierr.ErrUnauthenticated("no session"))
	}
	return id, ok
}
