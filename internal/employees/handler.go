package employees

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"timeflow-backend/internal/platform/auth"
	"timeflow-backend/internal/platform/bodylimit"
	"timeflow-backend/internal/platform/requestid"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the public routes on pub and the token-protected
// ones on priv.
func RegisterRoutes(pub, priv gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	limit := bodylimit.Middleware(bodylimit.ForImage(svc.maxImage))
	pub.POST("/employees/register", limit, h.Register)
	pub.POST("/employees/login", h.Login)
	priv.GET("/employees/:ec_number", h.Get)
	priv.POST("/employees/:ec_number/enroll", limit, h.Enroll)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if bodylimit.IsTooLarge(err) {
			c.JSON(http.StatusBadRequest, errorBody(errImageTooLarge))
			return
		}
		c.JSON(http.StatusBadRequest, errorBody(&APIError{Code: CodeInvalidArgument, Reason: "VALIDATION_ERROR", Message: err.Error()}))
		return
	}
	res, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(ErrInvalid("invalid request")))
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.ECNumber, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	ec := c.Param("ec_number")
	if !auth.CanActFor(c, ec) {
		c.JSON(http.StatusForbidden, errorBody(&APIError{Code: "FORBIDDEN", Message: "forbidden"}))
		return
	}
	res, err := h.svc.Get(c.Request.Context(), ec)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Enroll(c *gin.Context) {
	ec := c.Param("ec_number")
	if !auth.CanActFor(c, ec) {
		c.JSON(http.StatusForbidden, errorBody(&APIError{Code: "FORBIDDEN", Message: "forbidden"}))
		return
	}
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if bodylimit.IsTooLarge(err) {
			c.JSON(http.StatusBadRequest, errorBody(errImageTooLarge))
			return
		}
		c.JSON(http.StatusBadRequest, errorBody(ErrInvalid("image_base64 is required")))
		return
	}
	res, err := h.svc.Enroll(c.Request.Context(), ec, req.ImageBase64)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ===== helpers =====

type errDTO struct {
	Error *APIError `json:"error"`
}

func errorBody(e *APIError) errDTO { return errDTO{Error: e} }

func (h *Handler) fail(c *gin.Context, err error) {
	status := toHTTPStatus(err)
	if api, ok := err.(*APIError); ok {
		c.JSON(status, errorBody(api))
		return
	}
	log.Printf("[ERROR] %s %s req=%s: %v", c.Request.Method, c.FullPath(), requestid.Get(c), err)
	c.JSON(status, errorBody(&APIError{Code: CodeInternal, Message: "internal server error"}))
}
