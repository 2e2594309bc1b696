package attendance

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"timeflow-backend/internal/face"
	"timeflow-backend/internal/platform/auth"
	"timeflow-backend/internal/platform/bodylimit"
	"timeflow-backend/internal/platform/requestid"
)

type Handler struct{ svc *Service }

// RegisterRoutes expects r to sit behind auth.RequireAuth.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	limit := bodylimit.Middleware(bodylimit.ForImage(svc.maxImage))
	r.POST("/check-in", limit, h.CheckIn)
	r.POST("/check-out", limit, h.CheckOut)
	r.GET("/attendance/today", h.Today)
}

// POST /check-in
func (h *Handler) CheckIn(c *gin.Context) {
	ec, img, ok := h.bindPunch(c)
	if !ok {
		return
	}
	res, err := h.svc.CheckIn(c.Request.Context(), ec, img)
	if err != nil {
		h.fail(c, "check-in", ec, err)
		return
	}
	msg := "Check-in successful"
	if !res.Decision.Verified() {
		msg = "Check-in recorded with selfie (manual verification needed)"
	}
	c.JSON(http.StatusCreated, CheckInResponse{
		AttendanceID: res.Record.AttendanceULID,
		ECNumber:     res.Record.ECNumber,
		Date:         res.Record.WorkDate,
		CheckInTime:  res.Record.CheckInTime,
		IsLate:       res.Record.IsLate,
		Verified:     res.Decision.Verified(),
		Outcome:      res.Decision.Outcome.String(),
		Message:      msg,
	})
}

// POST /check-out
func (h *Handler) CheckOut(c *gin.Context) {
	ec, img, ok := h.bindPunch(c)
	if !ok {
		return
	}
	res, err := h.svc.CheckOut(c.Request.Context(), ec, img)
	if err != nil {
		h.fail(c, "check-out", ec, err)
		return
	}
	msg := "Check-out successful"
	if !res.Decision.Verified() {
		msg = "Check-out recorded with selfie (manual verification needed)"
	}
	resp := CheckOutResponse{
		AttendanceID: res.Record.AttendanceULID,
		ECNumber:     res.Record.ECNumber,
		Date:         res.Record.WorkDate,
		Verified:     res.Decision.Verified(),
		Outcome:      res.Decision.Outcome.String(),
		Message:      msg,
	}
	if res.Record.CheckOutTime != nil {
		resp.CheckOutTime = *res.Record.CheckOutTime
	}
	if res.Record.TotalHours != nil {
		resp.TotalHours = roundHours(*res.Record.TotalHours)
	}
	c.JSON(http.StatusOK, resp)
}

// GET /attendance/today?ec_number=
func (h *Handler) Today(c *gin.Context) {
	ec := c.Query("ec_number")
	if ec == "" {
		ec = auth.Subject(c)
	}
	if !auth.CanActFor(c, ec) {
		c.JSON(http.StatusForbidden, errorBody(&APIError{Code: "FORBIDDEN", Message: "not allowed for this employee"}))
		return
	}
	rec, err := h.svc.Record(c.Request.Context(), ec)
	if err != nil {
		h.fail(c, "today", ec, err)
		return
	}
	c.JSON(http.StatusOK, rec.toDTO())
}

// ---------- helpers ----------

func (h *Handler) bindPunch(c *gin.Context) (string, []byte, bool) {
	var req PunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if bodylimit.IsTooLarge(err) {
			c.JSON(http.StatusBadRequest, errorBody(toAPIError(face.ErrImageTooLarge)))
			return "", nil, false
		}
		c.JSON(http.StatusBadRequest, errorBody(ErrInvalid("invalid json or missing image_base64")))
		return "", nil, false
	}
	ec := req.ECNumber
	if ec == "" {
		ec = auth.Subject(c)
	}
	if !auth.CanActFor(c, ec) {
		c.JSON(http.StatusForbidden, errorBody(&APIError{Code: "FORBIDDEN", Message: "cannot punch for another employee"}))
		return "", nil, false
	}
	if h.svc.maxImage > 0 && face.EncodedLen(req.ImageBase64) > h.svc.maxImage {
		c.JSON(http.StatusBadRequest, errorBody(toAPIError(face.ErrImageTooLarge)))
		return "", nil, false
	}
	img, err := face.DecodeBase64Image(req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(toAPIError(err)))
		return "", nil, false
	}
	return ec, img, true
}

func (h *Handler) fail(c *gin.Context, op, ec string, err error) {
	status := toHTTPStatus(err)
	if status >= 500 {
		log.Printf("[ERROR] %s %s req=%s: %v", op, ec, requestid.Get(c), err)
	}
	c.JSON(status, errorBody(toAPIError(err)))
}

type errorDTO struct {
	Error *APIError `json:"error"`
}

func errorBody(e *APIError) errorDTO { return errorDTO{Error: e} }
