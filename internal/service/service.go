package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/7andoka/lets-learn-academy/internal/models"
	"github.com/7andoka/lets-learn-academy/internal/repository"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)

	// User directory
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)

	// Subject catalog
	CreateSubject(ctx context.Context, name string) (*models.Subject, error)
	UpdateSubject(ctx context.Context, id, name string) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id string) error
	ListSubjects(ctx context.Context) ([]models.Subject, error)

	// Lessons
	CreateLesson(ctx context.Context, req models.CreateLessonRequest) (*models.Lesson, error)
	ListLessons(ctx context.Context) ([]models.Lesson, error)
	TeacherLessons(ctx context.Context, teacherID string) ([]models.Lesson, error)
	AssignedStudents(ctx context.Context, teacherID string) ([]models.User, error)
	StudentOverview(ctx context.Context, studentID string) (*models.StudentOverview, error)

	// Account ledger
	GetAccountStatement(ctx context.Context, userID string, role models.Role, from, to *models.Date) (*models.AccountStatement, error)
	AddPayment(ctx context.Context, req models.CreatePaymentRequest) (*models.Payment, error)

	// Reports
	LessonsByCounterpart(ctx context.Context, anchorID string, direction models.ReportDirection) ([]models.LessonTally, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	logger        *zap.Logger
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, jwtSecret string, logger *zap.Logger) Service {
	return &DefaultService{
		repo:          repo,
		logger:        logger,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 24 * time.Hour, // 24 hours token validity
	}
}

// Login verifies a username/password pair and issues a JWT carrying the
// user id and role.
func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	user.Password = ""

	return &models.AuthResponse{
		Status:    "success",
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
		User:      user,
	}, nil
}

func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub":  user.ID, // subject
		"role": string(user.Role),
		"exp":  expirationTime.Unix(),
		"iat":  time.Now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
