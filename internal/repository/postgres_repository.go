package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/7andoka/lets-learn-academy/internal/models"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, name, password, role, default_session_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(ctx, query,
		user.ID, user.Username, user.Name, user.Password, user.Role,
		user.DefaultSessionPrice, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return err
	}

	err = r.replaceTeacherLinksTx(ctx, tx, user.ID, user.TeacherLinks)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, user *models.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = $1, name = $2, password = $3, role = $4, default_session_price = $5, updated_at = $6
		WHERE id = $7
	`

	_, err = tx.ExecContext(ctx, query,
		user.Username, user.Name, user.Password, user.Role,
		user.DefaultSessionPrice, user.UpdatedAt, user.ID)
	if err != nil {
		return err
	}

	err = r.replaceTeacherLinksTx(ctx, tx, user.ID, user.TeacherLinks)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// replaceTeacherLinksTx rewrites a student's link set within a transaction.
func (r *PostgresRepository) replaceTeacherLinksTx(ctx context.Context, tx *sqlx.Tx, studentID string, links []models.TeacherLink) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM teacher_links WHERE student_id = $1`, studentID)
	if err != nil {
		return err
	}

	for _, link := range links {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO teacher_links (student_id, teacher_id, session_price) VALUES ($1, $2, $3)`,
			studentID, link.TeacherID, link.SessionPrice)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	// Remove link rows on either side of the relationship before the user
	// row itself goes.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM teacher_links WHERE student_id = $1 OR teacher_id = $1`, id)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	if err := r.attachTeacherLinks(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT * FROM users WHERE username = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	if err := r.attachTeacherLinks(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) attachTeacherLinks(ctx context.Context, user *models.User) error {
	if user.Role != models.RoleStudent {
		return nil
	}

	links := []models.TeacherLink{}
	err := r.db.SelectContext(ctx, &links,
		`SELECT teacher_id, session_price FROM teacher_links WHERE student_id = $1 ORDER BY teacher_id`,
		user.ID)
	if err != nil {
		return err
	}

	user.TeacherLinks = links
	return nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}

	if err := r.attachAllTeacherLinks(ctx, users); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *PostgresRepository) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT * FROM users WHERE role = $1 ORDER BY name`, role)
	if err != nil {
		return nil, err
	}

	if err := r.attachAllTeacherLinks(ctx, users); err != nil {
		return nil, err
	}

	return users, nil
}

// attachAllTeacherLinks loads every link row once and distributes them,
// avoiding a query per student.
func (r *PostgresRepository) attachAllTeacherLinks(ctx context.Context, users []models.User) error {
	type linkRow struct {
		StudentID    string `db:"student_id"`
		models.TeacherLink
	}

	var rows []linkRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT student_id, teacher_id, session_price FROM teacher_links ORDER BY student_id, teacher_id`)
	if err != nil {
		return err
	}

	byStudent := make(map[string][]models.TeacherLink)
	for _, row := range rows {
		byStudent[row.StudentID] = append(byStudent[row.StudentID], row.TeacherLink)
	}

	for i := range users {
		if users[i].Role == models.RoleStudent {
			users[i].TeacherLinks = byStudent[users[i].ID]
		}
	}

	return nil
}

// Subject repository methods
func (r *PostgresRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.New().String()
	}
	subject.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subjects (id, name, created_at) VALUES ($1, $2, $3)`,
		subject.ID, subject.Name, subject.CreatedAt)
	return err
}

func (r *PostgresRepository) UpdateSubject(ctx context.Context, subject *models.Subject) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE subjects SET name = $1 WHERE id = $2`,
		subject.Name, subject.ID)
	return err
}

func (r *PostgresRepository) DeleteSubject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) GetSubjectByID(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	err := r.db.GetContext(ctx, &subject, `SELECT * FROM subjects WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Subject not found
		}
		return nil, err
	}

	return &subject, nil
}

// GetSubjectByName matches case-insensitively so "Math" and "math" are
// the same catalog entry.
func (r *PostgresRepository) GetSubjectByName(ctx context.Context, name string) (*models.Subject, error) {
	var subject models.Subject
	err := r.db.GetContext(ctx, &subject,
		`SELECT * FROM subjects WHERE LOWER(name) = LOWER($1)`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Subject not found
		}
		return nil, err
	}

	return &subject, nil
}

func (r *PostgresRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	err := r.db.SelectContext(ctx, &subjects, `SELECT * FROM subjects ORDER BY name`)
	if err != nil {
		return nil, err
	}

	return subjects, nil
}

// Lesson repository methods
func (r *PostgresRepository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.New().String()
	}
	lesson.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO lessons (id, teacher_id, student_id, subject, lesson_date, lesson_time, status, session_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		lesson.ID, lesson.TeacherID, lesson.StudentID, lesson.Subject,
		lesson.Date, lesson.Time, lesson.Status, lesson.SessionPrice, lesson.CreatedAt)
	return err
}

func (r *PostgresRepository) FindLessons(ctx context.Context, filter LessonFilter) ([]models.Lesson, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("lesson_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("lesson_date <= $%d", len(args)))
	}

	query := `SELECT * FROM lessons`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY lesson_date ASC, lesson_time ASC, created_at ASC`

	var lessons []models.Lesson
	err := r.db.SelectContext(ctx, &lessons, query, args...)
	if err != nil {
		return nil, err
	}

	return lessons, nil
}

func (r *PostgresRepository) CountLessonsForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM lessons WHERE teacher_id = $1 OR student_id = $1`, userID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *PostgresRepository) CountLessonsForSubject(ctx context.Context, subjectName string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM lessons WHERE subject = $1`, subjectName)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Payment repository methods
func (r *PostgresRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	payment.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO payments (id, user_id, amount, paid_on, direction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID, payment.UserID, payment.Amount, payment.Date,
		payment.Direction, payment.CreatedAt)
	return err
}

func (r *PostgresRepository) FindPayments(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("paid_on >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("paid_on <= $%d", len(args)))
	}

	query := `SELECT * FROM payments`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY paid_on ASC, created_at ASC`

	var payments []models.Payment
	err := r.db.SelectContext(ctx, &payments, query, args...)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
