package models

import "github.com/shopspring/decimal"

// Request models
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TeacherLinkInput struct {
	TeacherID    string          `json:"teacherId" binding:"required"`
	SessionPrice decimal.Decimal `json:"sessionPrice"`
}

type CreateUserRequest struct {
	Username            string             `json:"username" binding:"required"`
	Password            string             `json:"password" binding:"required,min=8"`
	Name                string             `json:"name" binding:"required"`
	Role                Role               `json:"role" binding:"required,oneof=Admin Teacher Student"`
	DefaultSessionPrice *decimal.Decimal   `json:"defaultSessionPrice"`
	TeacherLinks        []TeacherLinkInput `json:"teacherLinks"`
}

// UpdateUserRequest mirrors CreateUserRequest except that an empty
// password keeps the existing credential.
type UpdateUserRequest struct {
	Username            string             `json:"username" binding:"required"`
	Password            string             `json:"password"`
	Name                string             `json:"name" binding:"required"`
	Role                Role               `json:"role" binding:"required,oneof=Admin Teacher Student"`
	DefaultSessionPrice *decimal.Decimal   `json:"defaultSessionPrice"`
	TeacherLinks        []TeacherLinkInput `json:"teacherLinks"`
}

type SubjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateLessonRequest struct {
	TeacherID string           `json:"teacherId"` // defaults to the authenticated teacher
	StudentID string           `json:"studentId" binding:"required"`
	Subject   string           `json:"subject" binding:"required"`
	Date      Date             `json:"date" binding:"required"`
	Time      string           `json:"time" binding:"required"`
	Status    AttendanceStatus `json:"status" binding:"required,oneof=Present Absent"`
}

type CreatePaymentRequest struct {
	UserID    string           `json:"userId" binding:"required"`
	Amount    decimal.Decimal  `json:"amount" binding:"required"`
	Date      Date             `json:"date" binding:"required"`
	Direction PaymentDirection `json:"direction" binding:"required,oneof=paid_to_teacher received_from_student"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
	User      *User  `json:"user,omitempty"`
}

type UserResponse struct {
	Status string `json:"status"`
	User   *User  `json:"user"`
}

type UserListResponse struct {
	Status string `json:"status"`
	Users  []User `json:"users"`
}

type SubjectResponse struct {
	Status  string   `json:"status"`
	Subject *Subject `json:"subject"`
}

type SubjectListResponse struct {
	Status   string    `json:"status"`
	Subjects []Subject `json:"subjects"`
}

type LessonResponse struct {
	Status string  `json:"status"`
	Lesson *Lesson `json:"lesson"`
}

type LessonListResponse struct {
	Status  string   `json:"status"`
	Lessons []Lesson `json:"lessons"`
}

type PaymentResponse struct {
	Status  string   `json:"status"`
	Payment *Payment `json:"payment"`
}

type StatementResponse struct {
	Status    string            `json:"status"`
	Statement *AccountStatement `json:"statement"`
}

type ReportResponse struct {
	Status string        `json:"status"`
	Rows   []LessonTally `json:"rows"`
}

// StudentOverview is what a student's dashboard needs: the teachers they
// are linked to and their full lesson history.
type StudentOverview struct {
	Teachers []User   `json:"teachers"`
	Lessons  []Lesson `json:"lessons"`
}

type StudentOverviewResponse struct {
	Status   string           `json:"status"`
	Overview *StudentOverview `json:"overview"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
