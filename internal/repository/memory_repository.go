package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/7andoka/lets-learn-academy/internal/models"
)

// MemoryRepository is an in-memory Repository used by unit tests and the
// API test harness. It mirrors the Postgres implementation's observable
// behavior, including the (nil, nil) miss convention and result ordering.
type MemoryRepository struct {
	mu       sync.RWMutex
	users    map[string]models.User
	subjects map[string]models.Subject
	lessons  map[string]models.Lesson
	payments map[string]models.Payment
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[string]models.User),
		subjects: make(map[string]models.Subject),
		lessons:  make(map[string]models.Lesson),
		payments: make(map[string]models.Payment),
	}
}

func copyUser(u models.User) models.User {
	clone := u
	clone.TeacherLinks = append([]models.TeacherLink(nil), u.TeacherLinks...)
	return clone
}

// User repository methods
func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = copyUser(*user)
	return nil
}

func (r *MemoryRepository) UpdateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = copyUser(*user)
	return nil
}

func (r *MemoryRepository) DeleteUser(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)

	// Drop link rows pointing at the deleted user.
	for uid, u := range r.users {
		if u.Role != models.RoleStudent {
			continue
		}
		kept := u.TeacherLinks[:0]
		for _, link := range u.TeacherLinks {
			if link.TeacherID != id {
				kept = append(kept, link)
			}
		}
		u.TeacherLinks = kept
		r.users[uid] = u
	}

	return nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil // User not found
	}

	clone := copyUser(user)
	return &clone, nil
}

func (r *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			clone := copyUser(user)
			return &clone, nil
		}
	}

	return nil, nil // User not found
}

func (r *MemoryRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, copyUser(user))
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (r *MemoryRepository) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []models.User{}
	for _, user := range r.users {
		if user.Role == role {
			users = append(users, copyUser(user))
		}
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

// Subject repository methods
func (r *MemoryRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if subject.ID == "" {
		subject.ID = uuid.New().String()
	}
	subject.CreatedAt = time.Now().UTC()

	r.subjects[subject.ID] = *subject
	return nil
}

func (r *MemoryRepository) UpdateSubject(ctx context.Context, subject *models.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.subjects[subject.ID]
	if ok {
		existing.Name = subject.Name
		r.subjects[subject.ID] = existing
	}
	return nil
}

func (r *MemoryRepository) DeleteSubject(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subjects, id)
	return nil
}

func (r *MemoryRepository) GetSubjectByID(ctx context.Context, id string) (*models.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subject, ok := r.subjects[id]
	if !ok {
		return nil, nil // Subject not found
	}

	clone := subject
	return &clone, nil
}

func (r *MemoryRepository) GetSubjectByName(ctx context.Context, name string) (*models.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, subject := range r.subjects {
		if strings.EqualFold(subject.Name, name) {
			clone := subject
			return &clone, nil
		}
	}

	return nil, nil // Subject not found
}

func (r *MemoryRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subjects := make([]models.Subject, 0, len(r.subjects))
	for _, subject := range r.subjects {
		subjects = append(subjects, subject)
	}

	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

// Lesson repository methods
func (r *MemoryRepository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lesson.ID == "" {
		lesson.ID = uuid.New().String()
	}
	lesson.CreatedAt = time.Now().UTC()

	r.lessons[lesson.ID] = *lesson
	return nil
}

func (r *MemoryRepository) FindLessons(ctx context.Context, filter LessonFilter) ([]models.Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lessons := []models.Lesson{}
	for _, lesson := range r.lessons {
		if filter.TeacherID != "" && lesson.TeacherID != filter.TeacherID {
			continue
		}
		if filter.StudentID != "" && lesson.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && lesson.Status != filter.Status {
			continue
		}
		if filter.From != nil && lesson.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && lesson.Date.After(*filter.To) {
			continue
		}
		lessons = append(lessons, lesson)
	}

	sort.SliceStable(lessons, func(i, j int) bool {
		if !lessons[i].Date.Equal(lessons[j].Date.Time) {
			return lessons[i].Date.Before(lessons[j].Date)
		}
		if lessons[i].Time != lessons[j].Time {
			return lessons[i].Time < lessons[j].Time
		}
		return lessons[i].CreatedAt.Before(lessons[j].CreatedAt)
	})

	return lessons, nil
}

func (r *MemoryRepository) CountLessonsForUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, lesson := range r.lessons {
		if lesson.TeacherID == userID || lesson.StudentID == userID {
			count++
		}
	}

	return count, nil
}

func (r *MemoryRepository) CountLessonsForSubject(ctx context.Context, subjectName string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, lesson := range r.lessons {
		if lesson.Subject == subjectName {
			count++
		}
	}

	return count, nil
}

// Payment repository methods
func (r *MemoryRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	payment.CreatedAt = time.Now().UTC()

	r.payments[payment.ID] = *payment
	return nil
}

func (r *MemoryRepository) FindPayments(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payments := []models.Payment{}
	for _, payment := range r.payments {
		if filter.UserID != "" && payment.UserID != filter.UserID {
			continue
		}
		if filter.From != nil && payment.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && payment.Date.After(*filter.To) {
			continue
		}
		payments = append(payments, payment)
	}

	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].Date.Equal(payments[j].Date.Time) {
			return payments[i].Date.Before(payments[j].Date)
		}
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})

	return payments, nil
}
