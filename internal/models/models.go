package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies what a user is allowed to do and which side of the
// ledger they sit on.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleTeacher Role = "Teacher"
	RoleStudent Role = "Student"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher || r == RoleStudent
}

// AttendanceStatus records the outcome of a scheduled lesson.
// Only Present lessons are billable.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
)

// Valid reports whether the status is one of the known values.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// PaymentDirection distinguishes money flowing out to a teacher from
// money collected from a student.
type PaymentDirection string

const (
	PaidToTeacher       PaymentDirection = "paid_to_teacher"
	ReceivedFromStudent PaymentDirection = "received_from_student"
)

// Valid reports whether the direction is one of the known values.
func (d PaymentDirection) Valid() bool {
	return d == PaidToTeacher || d == ReceivedFromStudent
}

// TeacherLink is an explicit per-relationship price recorded on a student.
// It overrides the teacher's default session price.
type TeacherLink struct {
	TeacherID    string          `db:"teacher_id" json:"teacherId"`
	SessionPrice decimal.Decimal `db:"session_price" json:"sessionPrice"`
}

// User represents an admin, teacher or student. The role-specific fields
// are exclusive: DefaultSessionPrice is set only for teachers and
// TeacherLinks only for students; the write paths enforce this.
type User struct {
	ID                  string           `db:"id" json:"id"`
	Username            string           `db:"username" json:"username"`
	Name                string           `db:"name" json:"name"`
	Password            string           `db:"password" json:"-"` // bcrypt hash, never serialized
	Role                Role             `db:"role" json:"role"`
	DefaultSessionPrice *decimal.Decimal `db:"default_session_price" json:"defaultSessionPrice,omitempty"`
	TeacherLinks        []TeacherLink    `db:"-" json:"teacherLinks,omitempty"`
	CreatedAt           time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time        `db:"updated_at" json:"updatedAt"`
}

// LinkFor returns the student's explicit link for the given teacher, if any.
func (u *User) LinkFor(teacherID string) (TeacherLink, bool) {
	for _, link := range u.TeacherLinks {
		if link.TeacherID == teacherID {
			return link, true
		}
	}
	return TeacherLink{}, false
}

// Lesson is the immutable historical record of a tutoring session.
// SessionPrice is resolved once at creation time and never recomputed,
// so later price changes do not alter past statements.
type Lesson struct {
	ID           string           `db:"id" json:"id"`
	TeacherID    string           `db:"teacher_id" json:"teacherId"`
	StudentID    string           `db:"student_id" json:"studentId"`
	Subject      string           `db:"subject" json:"subject"`
	Date         Date             `db:"lesson_date" json:"date"`
	Time         string           `db:"lesson_time" json:"time"`
	Status       AttendanceStatus `db:"status" json:"status"`
	SessionPrice decimal.Decimal  `db:"session_price" json:"sessionPrice"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
}

// Payment is one entry in the append-only payment log. It is not linked
// to specific lessons; payments reconcile against the aggregate due.
type Payment struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"userId"`
	Amount    decimal.Decimal  `db:"amount" json:"amount"`
	Date      Date             `db:"paid_on" json:"date"`
	Direction PaymentDirection `db:"direction" json:"direction"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

// Subject is a catalog entry. Lessons reference subjects by name, not id,
// so renaming or deleting a subject never rewrites lesson history.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// StatementEntry is one row of the itemized transaction list: a lesson
// appears as a debit, a payment as a credit.
type StatementEntry struct {
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// AccountStatement is the derived reconciliation of a user's billable
// lessons against their recorded payments over a date range. It is
// computed on demand and never persisted.
//
// Balance is totalDue - totalPaid for both roles: for a teacher a
// positive balance means the academy owes the teacher, for a student it
// means the student owes the academy. The engine never flips the sign;
// Role is carried so callers can interpret it.
type AccountStatement struct {
	UserID    string           `json:"userId"`
	Role      Role             `json:"role"`
	Lessons   []Lesson         `json:"lessons"`
	Payments  []Payment        `json:"payments"`
	Entries   []StatementEntry `json:"entries"`
	TotalDue  decimal.Decimal  `json:"totalDue"`
	TotalPaid decimal.Decimal  `json:"totalPaid"`
	Balance   decimal.Decimal  `json:"balance"`
}

// ReportDirection selects which side of the lesson a report anchors on.
type ReportDirection string

const (
	// ByTeacher groups a teacher's lessons per student.
	ByTeacher ReportDirection = "byTeacher"
	// ByStudent groups a student's lessons per teacher.
	ByStudent ReportDirection = "byStudent"
)

// Valid reports whether the direction is one of the known values.
func (d ReportDirection) Valid() bool {
	return d == ByTeacher || d == ByStudent
}

// LessonTally is one row of the lessons-per-counterpart report: how many
// lessons (regardless of attendance) an anchor user had with one
// counterpart.
type LessonTally struct {
	CounterpartID string `json:"counterpartId"`
	Name          string `json:"name"`
	LessonCount   int    `json:"lessonCount"`
}
