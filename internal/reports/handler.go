package reports

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"timeflow-backend/internal/platform/requestid"
)

type Handler struct {
	svc *Service
	loc *time.Location
}

// RegisterRoutes mounts the report routes; callers restrict r to admins.
func RegisterRoutes(r gin.IRoutes, svc *Service, loc *time.Location) {
	h := &Handler{svc: svc, loc: loc}
	r.GET("/reports/daily", h.Daily)
	r.GET("/reports/daily.csv", h.DailyCSV)
	r.GET("/reports/lateness", h.Lateness)
	r.GET("/reports/pending", h.Pending)
	r.GET("/reports/employee/:ec_number", h.EmployeeHistory)
}

func (h *Handler) Daily(c *gin.Context) {
	res, err := h.svc.Daily(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DailyCSV(c *gin.Context) {
	res, err := h.svc.Daily(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	sjis := c.Query("encoding") == "sjis"
	var b bytes.Buffer
	if err := WriteDailyCSV(&b, res, h.loc, sjis); err != nil {
		h.fail(c, err)
		return
	}
	ct := "text/csv; charset=utf-8"
	if sjis {
		ct = "text/csv; charset=Shift_JIS"
	}
	c.Header("Content-Disposition", `attachment; filename="attendance_`+res.Date+`.csv"`)
	c.Data(http.StatusOK, ct, b.Bytes())
}

func (h *Handler) Lateness(c *gin.Context) {
	res, err := h.svc.Lateness(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Pending(c *gin.Context) {
	res, err := h.svc.PendingReview(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) EmployeeHistory(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_ARGUMENT", "message": "limit must be a non-negative integer"}})
			return
		}
		limit = n
	}
	res, err := h.svc.EmployeeHistory(c.Request.Context(), c.Param("ec_number"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_ARGUMENT", "message": err.Error()}})
		return
	}
	log.Printf("[ERROR] %s %s req=%s: %v", c.Request.Method, c.FullPath(), requestid.Get(c), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL", "message": "internal server error"}})
}
