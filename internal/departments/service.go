// Package departments manages the department master used by employee
// registration. Departments are never deleted, only disabled.
package departments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"timeflow-backend/internal/platform/db"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		}
	}
	return 500
}

type Service struct{ store Store }

func NewService(store Store) *Service { return &Service{store: store} }

func parseBoolish(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "1" || s == "true" || s == "yes" || s == "all"
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalid("name is required")
	}
	return name, nil
}

func (s *Service) List(ctx context.Context, all string) ([]Department, error) {
	return s.store.List(ctx, parseBoolish(all))
}

func (s *Service) Get(ctx context.Context, id int64) (*Department, error) {
	d, err := s.store.Get(ctx, id)
	if notFound(err) {
		return nil, ErrNotFound("department not found")
	}
	return d, err
}

func (s *Service) Create(ctx context.Context, name string) (*Department, error) {
	n, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	d, err := s.store.Create(ctx, n)
	if db.IsDuplicateKey(err) {
		return nil, ErrConflict("department name already exists")
	}
	return d, err
}

func (s *Service) Update(ctx context.Context, id int64, name string, disabled bool) (*Department, error) {
	n, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	err = s.store.Update(ctx, id, n, disabled)
	switch {
	case notFound(err):
		return nil, ErrNotFound("department not found")
	case db.IsDuplicateKey(err):
		return nil, ErrConflict("department name already exists")
	case err != nil:
		return nil, err
	}
	return s.Get(ctx, id)
}

// Disable は論理削除（既存社員の所属は残る）
func (s *Service) Disable(ctx context.Context, id int64) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.Update(ctx, id, d.Name, true)
	return err
}
