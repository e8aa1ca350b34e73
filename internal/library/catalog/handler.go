package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

// RegisterStaffRoutes mounts the catalog pages shared by admins and employees.
func RegisterStaffRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 書籍
	r.GET("/manage-books", h.ListBooks)
	r.GET("/manage-books/export", h.ExportBooks)
	r.GET("/add-book", h.AddBookForm)
	r.POST("/add-book", h.CreateBook)
	r.GET("/edit-book/:id", h.EditBookForm)
	r.POST("/edit-book/:id", h.UpdateBook)
	r.GET("/delete-book/:id", h.DeleteBook)

	// 著者・出版社
	r.GET("/admin/authors", h.ListAuthors)
	r.POST("/admin/add-author", h.CreateAuthor)
	r.GET("/admin/delete-author/:id", h.DeleteAuthor)
	r.GET("/admin/publishers", h.ListPublishers)
	r.POST("/admin/add-publisher", h.CreatePublisher)
	r.GET("/admin/delete-publisher/:id", h.DeletePublisher)

	// 取引先
	r.GET("/admin/vendors", h.ListVendors)
	r.POST("/add_vendor", h.CreateVendor)
	r.GET("/admin/vendor/delete/:id", h.DeleteVendor)
}

// RegisterMemberRoutes mounts the read-only catalog under /member.
func RegisterMemberRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/view-books", h.ListBooks)
}

// ===== books =====

// GET /manage-books?q=&limit=&offset=
func (h *Handler) ListBooks(c *gin.Context) {
	p := Page{
		Limit:  atoiDef(c.Query("limit"), 0),
		Offset: atoiDef(c.Query("offset"), 0),
	}
	res, err := h.svc.ListBooks(c.Request.Context(), p, BookQuery{Title: c.Query("q")})
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /manage-books/export?encoding=utf-8|shift_jis
func (h *Handler) ExportBooks(c *gin.Context) {
	enc, err := ParseEncoding(c.Query("encoding"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	body, err := h.svc.ExportBooks(c.Request.Context(), enc)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	charset := "utf-8"
	if enc == EncodingShiftJIS {
		charset = "Shift_JIS"
	}
	c.Header("Content-Disposition", `attachment; filename="books.csv"`)
	c.Data(http.StatusOK, "text/csv; charset="+charset, body)
}

func (h *Handler) AddBookForm(c *gin.Context) {
	res, err := h.svc.BookForm(c.Request.Context(), 0)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CreateBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	res, err := h.svc.CreateBook(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.Header("Location", "/edit-book/"+strconv.FormatInt(res.ID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) EditBookForm(c *gin.Context) {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	res, err := h.svc.BookForm(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateBook(c *gin.Context) {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	var req BookRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	res, err := h.svc.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteBook(c *gin.Context) {
	h.deleteByID(c, h.svc.DeleteBook)
}

// ===== authors / publishers =====

func (h *Handler) ListAuthors(c *gin.Context) {
	res, err := h.svc.ListAuthors(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authors": res})
}

func (h *Handler) CreateAuthor(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	res, err := h.svc.CreateAuthor(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) DeleteAuthor(c *gin.Context) {
	h.deleteByID(c, h.svc.DeleteAuthor)
}

func (h *Handler) ListPublishers(c *gin.Context) {
	res, err := h.svc.ListPublishers(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"publishers": res})
}

func (h *Handler) CreatePublisher(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	res, err := h.svc.CreatePublisher(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) DeletePublisher(c *gin.Context) {
	h.deleteByID(c, h.svc.DeletePublisher)
}

// ===== vendors =====

func (h *Handler) ListVendors(c *gin.Context) {
	res, err := h.svc.ListVendors(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": res})
}

func (h *Handler) CreateVendor(c *gin.Context) {
	var req VendorRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	res, err := h.svc.CreateVendor(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) DeleteVendor(c *gin.Context) {
	h.deleteByID(c, h.svc.DeleteVendor)
}

// ---------- helpers ----------

// deleteByID answers 204 whether or not the row existed.
func (h *Handler) deleteByID(c *gin.Context, del func(context.Context, int64) error) {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func atoiDef(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
