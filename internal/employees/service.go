package employees

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"timeflow-backend/internal/enrollment"
	"timeflow-backend/internal/face"
	"timeflow-backend/internal/platform/auth"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)

// ===== Error model (attendance と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeUnauthenticated:
			return 401
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		case CodeUnavailable:
			return 503
		}
	}
	return 500
}

// Enroller is the enrollment manager as seen from registration.
type Enroller interface {
	Enroll(ctx context.Context, ecNumber string, image []byte) (enrollment.Result, error)
}

type Service struct {
	store    EmployeeStore
	enroller Enroller
	issuer   *auth.Issuer
	maxImage int
}

func NewService(store EmployeeStore, enroller Enroller, issuer *auth.Issuer, maxImageBytes int) *Service {
	return &Service{store: store, enroller: enroller, issuer: issuer, maxImage: maxImageBytes}
}

// Register creates the employee and, when an image is supplied, enrolls
// their face. A failed enrollment does not undo the registration; the
// response says so explicitly.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	if req.ECNumber == "" || req.Name == "" || len(req.Password) < 6 || req.DepartmentID <= 0 {
		return RegisterResponse{}, ErrInvalid("ec_number, name, password(>=6) and department_id are required")
	}
	ok, err := s.store.DepartmentExists(ctx, req.DepartmentID)
	if err != nil {
		return RegisterResponse{}, err
	}
	if !ok {
		return RegisterResponse{}, &APIError{Code: CodeInvalidArgument, Reason: "INVALID_DEPARTMENT", Message: "invalid department_id"}
	}

	// 画像は先に検証しておく（壊れた画像で登録だけ成功するのを避ける）
	var img []byte
	if req.ImageBase64 != "" {
		img, err = s.decodeImage(req.ImageBase64)
		if err != nil {
			return RegisterResponse{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegisterResponse{}, err
	}
	err = s.store.Create(ctx, &Employee{
		ECNumber:     req.ECNumber,
		Name:         req.Name,
		PasswordHash: string(hash),
		DepartmentID: req.DepartmentID,
		Role:         auth.RoleEmployee,
	})
	if errors.Is(err, ErrAlreadyExists) {
		return RegisterResponse{}, &APIError{Code: CodeConflict, Reason: "DUPLICATE_EMPLOYEE", Message: "employee with this ec_number already exists"}
	}
	if err != nil {
		return RegisterResponse{}, err
	}
	log.Printf("[INFO] employee %s registered", req.ECNumber)

	resp := RegisterResponse{Message: "Employee registered successfully", ECNumber: req.ECNumber}
	if img == nil {
		resp.EnrollmentError = "NO_IMAGE"
		return resp, nil
	}
	if _, err := s.enroller.Enroll(ctx, req.ECNumber, img); err != nil {
		log.Printf("[WARN] face enrollment for %s failed: %v", req.ECNumber, err)
		resp.EnrollmentError = enrollment.Reason(err)
		resp.Message = "Employee registered without face enrollment"
		return resp, nil
	}
	resp.FaceEnrolled = true
	return resp, nil
}

func (s *Service) Login(ctx context.Context, ecNumber, password string) (LoginResponse, error) {
	e, err := s.store.GetByECNumber(ctx, ecNumber)
	if err != nil {
		return LoginResponse{}, err
	}
	// 存在しない場合もパスワード不一致と同じ応答にする
	if e == nil || bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)) != nil {
		return LoginResponse{}, &APIError{Code: CodeUnauthenticated, Message: "invalid credentials"}
	}
	tok, err := s.issuer.Issue(e.ECNumber, e.Role)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{Token: tok, Employee: e.toDTO()}, nil
}

func (s *Service) Get(ctx context.Context, ecNumber string) (EmployeeResponse, error) {
	e, err := s.store.GetByECNumber(ctx, ecNumber)
	if err != nil {
		return EmployeeResponse{}, err
	}
	if e == nil {
		return EmployeeResponse{}, &APIError{Code: CodeNotFound, Message: "employee not found"}
	}
	return e.toDTO(), nil
}

// Enroll (re-)enrolls an existing employee. Failures are input errors
// the caller can fix with a better capture.
func (s *Service) Enroll(ctx context.Context, ecNumber, imageBase64 string) (EnrollResponse, error) {
	img, err := s.decodeImage(imageBase64)
	if err != nil {
		return EnrollResponse{}, err
	}
	res, err := s.enroller.Enroll(ctx, ecNumber, img)
	if err != nil {
		reason := enrollment.Reason(err)
		switch {
		case errors.Is(err, enrollment.ErrEmployeeNotFound):
			return EnrollResponse{}, &APIError{Code: CodeNotFound, Reason: reason, Message: "employee not found"}
		case errors.Is(err, enrollment.ErrExtractionFailed):
			return EnrollResponse{}, &APIError{Code: CodeUnavailable, Reason: reason, Message: "face service unavailable, retry"}
		case reason == "INTERNAL":
			return EnrollResponse{}, err
		}
		return EnrollResponse{}, &APIError{Code: CodeInvalidArgument, Reason: reason, Message: err.Error()}
	}
	return EnrollResponse{
		ECNumber: res.ECNumber,
		Enrolled: true,
		FaceBox:  [4]int{res.Box.X, res.Box.Y, res.Box.Width, res.Box.Height},
	}, nil
}

var errImageTooLarge = &APIError{Code: CodeInvalidArgument, Reason: "IMAGE_TOO_LARGE", Message: "image exceeds size limit"}

func (s *Service) decodeImage(b64 string) ([]byte, error) {
	if s.maxImage > 0 && face.EncodedLen(b64) > s.maxImage {
		return nil, errImageTooLarge
	}
	img, err := face.DecodeBase64Image(b64)
	if err != nil {
		return nil, &APIError{Code: CodeInvalidArgument, Reason: "INVALID_IMAGE", Message: err.Error()}
	}
	return img, nil
}
