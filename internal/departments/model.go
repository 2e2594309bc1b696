package departments

type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type UpdateDepartmentRequest struct {
	Name       string `json:"name" binding:"required,max=255"`
	IsDisabled bool   `json:"is_disabled"`
}

type Department struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	IsDisabled bool   `json:"is_disabled"`
}
