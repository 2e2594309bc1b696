package employees

type RegisterRequest struct {
	ECNumber     string `json:"ec_number" binding:"required,alphanum,max=50"`
	Name         string `json:"name" binding:"required,max=255"`
	Password     string `json:"password" binding:"required,min=6"`
	DepartmentID int64  `json:"department_id" binding:"required,gt=0"`
	ImageBase64  string `json:"image_base64,omitempty"`
}

type RegisterResponse struct {
	Message      string `json:"message"`
	ECNumber     string `json:"ec_number"`
	FaceEnrolled bool   `json:"face_enrolled"`
	// 顔登録に失敗した理由（登録自体は成功している）
	EnrollmentError string `json:"enrollment_error,omitempty"`
}

type LoginRequest struct {
	ECNumber string `json:"ec_number" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string           `json:"token"`
	Employee EmployeeResponse `json:"employee"`
}

type EnrollRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

type EnrollResponse struct {
	ECNumber string `json:"ec_number"`
	Enrolled bool   `json:"face_enrolled"`
	FaceBox  [4]int `json:"face_box"` // x, y, width, height
}

type EmployeeResponse struct {
	ECNumber       string `json:"ec_number"`
	Name           string `json:"name"`
	DepartmentID   int64  `json:"department_id"`
	DepartmentName string `json:"department_name,omitempty"`
	Role           string `json:"role"`
	FaceEnrolled   bool   `json:"face_enrolled"`
}
