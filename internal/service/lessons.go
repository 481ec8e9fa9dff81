package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/7andoka/lets-learn-academy/internal/models"
	"github.com/7andoka/lets-learn-academy/internal/repository"
)

// resolvePrice determines the session price to lock onto a new lesson:
// the student's explicit link price for this teacher wins, otherwise the
// teacher's default. A pricing gap resolves to zero rather than an error
// so that attendance recording is never blocked by misconfiguration.
func (s *DefaultService) resolvePrice(teacher, student *models.User) decimal.Decimal {
	if link, ok := student.LinkFor(teacher.ID); ok {
		return link.SessionPrice
	}

	if teacher.DefaultSessionPrice != nil {
		return *teacher.DefaultSessionPrice
	}

	s.logger.Warn("no price configured for lesson, defaulting to zero",
		zap.String("teacherId", teacher.ID),
		zap.String("studentId", student.ID))
	return decimal.Zero
}

// CreateLesson records a tutoring session for a teacher and one of their
// assigned students. The price is resolved exactly once here and stamped
// onto the lesson; it is never recomputed.
func (s *DefaultService) CreateLesson(ctx context.Context, req models.CreateLessonRequest) (*models.Lesson, error) {
	teacher, err := s.repo.GetUserByID(ctx, req.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("error getting teacher: %w", err)
	}
	if teacher == nil || teacher.Role != models.RoleTeacher {
		return nil, fmt.Errorf("%w: teacher %s", ErrNotFound, req.TeacherID)
	}

	student, err := s.repo.GetUserByID(ctx, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	if student == nil || student.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: student %s", ErrNotFound, req.StudentID)
	}

	// Teachers normally record lessons only for assigned students, but a
	// missing link must not block attendance capture; it only means the
	// price falls back to the teacher's default.
	if _, ok := student.LinkFor(teacher.ID); !ok {
		s.logger.Warn("lesson recorded for unassigned student",
			zap.String("teacherId", teacher.ID),
			zap.String("studentId", student.ID))
	}

	subject, err := s.repo.GetSubjectByName(ctx, req.Subject)
	if err != nil {
		return nil, fmt.Errorf("error getting subject: %w", err)
	}
	if subject == nil {
		return nil, fmt.Errorf("%w: unknown subject %q", ErrInvalidInput, req.Subject)
	}

	lesson := &models.Lesson{
		ID:           uuid.New().String(),
		TeacherID:    teacher.ID,
		StudentID:    student.ID,
		Subject:      subject.Name,
		Date:         req.Date,
		Time:         req.Time,
		Status:       req.Status,
		SessionPrice: s.resolvePrice(teacher, student),
	}

	if err := s.repo.CreateLesson(ctx, lesson); err != nil {
		return nil, fmt.Errorf("error creating lesson: %w", err)
	}

	return lesson, nil
}

// ListLessons returns the full lesson log.
func (s *DefaultService) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	lessons, err := s.repo.FindLessons(ctx, repository.LessonFilter{})
	if err != nil {
		return nil, fmt.Errorf("error listing lessons: %w", err)
	}

	return lessons, nil
}

// TeacherLessons returns every lesson a teacher has recorded.
func (s *DefaultService) TeacherLessons(ctx context.Context, teacherID string) ([]models.Lesson, error) {
	teacher, err := s.repo.GetUserByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("error getting teacher: %w", err)
	}
	if teacher == nil || teacher.Role != models.RoleTeacher {
		return nil, fmt.Errorf("%w: teacher %s", ErrNotFound, teacherID)
	}

	lessons, err := s.repo.FindLessons(ctx, repository.LessonFilter{TeacherID: teacherID})
	if err != nil {
		return nil, fmt.Errorf("error listing lessons: %w", err)
	}

	return lessons, nil
}

// AssignedStudents returns the students linked to a teacher.
func (s *DefaultService) AssignedStudents(ctx context.Context, teacherID string) ([]models.User, error) {
	teacher, err := s.repo.GetUserByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("error getting teacher: %w", err)
	}
	if teacher == nil || teacher.Role != models.RoleTeacher {
		return nil, fmt.Errorf("%w: teacher %s", ErrNotFound, teacherID)
	}

	students, err := s.repo.ListUsersByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}

	assigned := []models.User{}
	for _, student := range students {
		if _, ok := student.LinkFor(teacherID); ok {
			student.Password = ""
			assigned = append(assigned, student)
		}
	}

	return assigned, nil
}

// StudentOverview returns a student's linked teachers and their full
// lesson history.
func (s *DefaultService) StudentOverview(ctx context.Context, studentID string) (*models.StudentOverview, error) {
	student, err := s.repo.GetUserByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	if student == nil || student.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: student %s", ErrNotFound, studentID)
	}

	teachers := []models.User{}
	for _, link := range student.TeacherLinks {
		teacher, err := s.repo.GetUserByID(ctx, link.TeacherID)
		if err != nil {
			return nil, fmt.Errorf("error getting teacher: %w", err)
		}
		if teacher == nil {
			continue
		}
		teacher.Password = ""
		teachers = append(teachers, *teacher)
	}

	lessons, err := s.repo.FindLessons(ctx, repository.LessonFilter{StudentID: studentID})
	if err != nil {
		return nil, fmt.Errorf("error listing lessons: %w", err)
	}

	return &models.StudentOverview{
		Teachers: teachers,
		Lessons:  lessons,
	}, nil
}
