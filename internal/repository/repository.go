package repository

import (
	"context"

	"github.com/7andoka/lets-learn-academy/internal/models"
)

// LessonFilter narrows FindLessons. Zero-valued fields are ignored; From
// and To are inclusive calendar-day bounds.
type LessonFilter struct {
	TeacherID string
	StudentID string
	Status    models.AttendanceStatus
	From      *models.Date
	To        *models.Date
}

// PaymentFilter narrows FindPayments. From and To are inclusive
// calendar-day bounds.
type PaymentFilter struct {
	UserID string
	From   *models.Date
	To     *models.Date
}

// Repository is the storage contract the service layer depends on. The
// ledger engine only ever sees this interface; lookups that miss return
// (nil, nil) rather than an error.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)

	// Subject operations
	CreateSubject(ctx context.Context, subject *models.Subject) error
	UpdateSubject(ctx context.Context, subject *models.Subject) error
	DeleteSubject(ctx context.Context, id string) error
	GetSubjectByID(ctx context.Context, id string) (*models.Subject, error)
	GetSubjectByName(ctx context.Context, name string) (*models.Subject, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)

	// Lesson operations. Lessons are append-only: there is no update or
	// delete, they are the billing history.
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	FindLessons(ctx context.Context, filter LessonFilter) ([]models.Lesson, error)
	CountLessonsForUser(ctx context.Context, userID string) (int, error)
	CountLessonsForSubject(ctx context.Context, subjectName string) (int, error)

	// Payment operations. Payments are append-only.
	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindPayments(ctx context.Context, filter PaymentFilter) ([]models.Payment, error)
}
