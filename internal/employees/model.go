package employees

import "time"

type Employee struct {
	ECNumber       string
	Name           string
	PasswordHash   string
	DepartmentID   int64
	DepartmentName string
	Role           string
	Enrolled       bool
	CreatedAt      time.Time
}

func (e *Employee) toDTO() EmployeeResponse {
	return EmployeeResponse{
		ECNumber:       e.ECNumber,
		Name:           e.Name,
		DepartmentID:   e.DepartmentID,
		DepartmentName: e.DepartmentName,
		Role:           e.Role,
		FaceEnrolled:   e.Enrolled,
	}
}
