package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/7andoka/lets-learn-academy/internal/models"
)

// CreateUser registers a new admin, teacher or student. The username must
// be unique and the role-specific fields must fit the role.
func (s *DefaultService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	existing, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}

	if existing != nil {
		return nil, fmt.Errorf("%w: username %q already exists", ErrConflict, req.Username)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Username: req.Username,
		Name:     req.Name,
		Password: string(hashedPassword),
		Role:     req.Role,
	}

	if err := s.applyRoleFields(ctx, user, req.DefaultSessionPrice, req.TeacherLinks); err != nil {
		return nil, err
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	user.Password = ""
	return user, nil
}

// UpdateUser edits an existing user. An empty password keeps the current
// credential. Price edits here never touch lessons that already exist.
func (s *DefaultService) UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}

	if req.Username != user.Username {
		other, err := s.repo.GetUserByUsername(ctx, req.Username)
		if err != nil {
			return nil, fmt.Errorf("error checking username: %w", err)
		}
		if other != nil && other.ID != id {
			return nil, fmt.Errorf("%w: username %q already exists", ErrConflict, req.Username)
		}
	}

	user.Username = req.Username
	user.Name = req.Name
	user.Role = req.Role

	if req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.Password = string(hashedPassword)
	}

	if err := s.applyRoleFields(ctx, user, req.DefaultSessionPrice, req.TeacherLinks); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	user.Password = ""
	return user, nil
}

// applyRoleFields enforces role exclusivity: a teacher carries a default
// session price and nothing else, a student carries teacher links and
// nothing else, an admin carries neither.
func (s *DefaultService) applyRoleFields(ctx context.Context, user *models.User, price *decimal.Decimal, links []models.TeacherLinkInput) error {
	user.DefaultSessionPrice = nil
	user.TeacherLinks = nil

	switch user.Role {
	case models.RoleTeacher:
		if price == nil {
			return fmt.Errorf("%w: defaultSessionPrice is required for teachers", ErrInvalidInput)
		}
		if price.IsNegative() {
			return fmt.Errorf("%w: defaultSessionPrice must not be negative", ErrInvalidInput)
		}
		user.DefaultSessionPrice = price

	case models.RoleStudent:
		seen := make(map[string]bool, len(links))
		for _, link := range links {
			if seen[link.TeacherID] {
				return fmt.Errorf("%w: duplicate teacher link for %s", ErrInvalidInput, link.TeacherID)
			}
			seen[link.TeacherID] = true

			if link.SessionPrice.IsNegative() {
				return fmt.Errorf("%w: session price must not be negative", ErrInvalidInput)
			}

			teacher, err := s.repo.GetUserByID(ctx, link.TeacherID)
			if err != nil {
				return fmt.Errorf("error checking teacher link: %w", err)
			}
			if teacher == nil {
				return fmt.Errorf("%w: linked teacher %s", ErrNotFound, link.TeacherID)
			}
			if teacher.Role != models.RoleTeacher {
				return fmt.Errorf("%w: user %s is not a teacher", ErrInvalidInput, link.TeacherID)
			}

			user.TeacherLinks = append(user.TeacherLinks, models.TeacherLink{
				TeacherID:    link.TeacherID,
				SessionPrice: link.SessionPrice,
			})
		}
	}

	return nil
}

// DeleteUser removes a user. Users referenced by any lesson cannot be
// deleted: lessons are immutable history and must not dangle. Deleting a
// teacher also removes that teacher from every student's links.
func (s *DefaultService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}

	count, err := s.repo.CountLessonsForUser(ctx, id)
	if err != nil {
		return fmt.Errorf("error counting lessons: %w", err)
	}

	if count > 0 {
		return fmt.Errorf("%w: user %s is referenced by %d lesson(s)", ErrConflict, id, count)
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	return nil
}

func (s *DefaultService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	sanitizeUsers(users)
	return users, nil
}

func (s *DefaultService) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	users, err := s.repo.ListUsersByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	sanitizeUsers(users)
	return users, nil
}

func sanitizeUsers(users []models.User) {
	for i := range users {
		users[i].Password = ""
	}
}
