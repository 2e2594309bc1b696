package departments

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"timeflow-backend/internal/platform/requestid"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the read routes on read and the writes on admin.
func RegisterRoutes(read, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	read.GET("/departments", h.List)
	read.GET("/departments/:id", h.Get)
	admin.POST("/departments", h.Create)
	admin.PUT("/departments/:id", h.Update)
	admin.DELETE("/departments/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), c.Query("all"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalid(err.Error())})
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalid(err.Error())})
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req.Name, req.IsDisabled)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Disable(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalid("invalid id")})
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	if api, ok := err.(*APIError); ok {
		c.JSON(toHTTPStatus(err), gin.H{"error": api})
		return
	}
	log.Printf("[ERROR] %s %s req=%s: %v", c.Request.Method, c.FullPath(), requestid.Get(c), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": &APIError{Code: CodeInternal, Message: "internal server error"}})
}
