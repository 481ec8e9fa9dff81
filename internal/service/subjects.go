package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/7andoka/lets-learn-academy/internal/models"
)

// CreateSubject adds a catalog entry. Names collide case-insensitively.
func (s *DefaultService) CreateSubject(ctx context.Context, name string) (*models.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: subject name is required", ErrInvalidInput)
	}

	existing, err := s.repo.GetSubjectByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("error checking subject existence: %w", err)
	}

	if existing != nil {
		return nil, fmt.Errorf("%w: subject %q already exists", ErrConflict, name)
	}

	subject := &models.Subject{
		ID:   uuid.New().String(),
		Name: name,
	}

	if err := s.repo.CreateSubject(ctx, subject); err != nil {
		return nil, fmt.Errorf("error creating subject: %w", err)
	}

	return subject, nil
}

// UpdateSubject renames a catalog entry. Existing lessons keep the old
// name; the catalog and history are deliberately decoupled.
func (s *DefaultService) UpdateSubject(ctx context.Context, id, name string) (*models.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: subject name is required", ErrInvalidInput)
	}

	subject, err := s.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting subject: %w", err)
	}

	if subject == nil {
		return nil, fmt.Errorf("%w: subject %s", ErrNotFound, id)
	}

	other, err := s.repo.GetSubjectByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("error checking subject name: %w", err)
	}

	if other != nil && other.ID != id {
		return nil, fmt.Errorf("%w: subject %q already exists", ErrConflict, name)
	}

	subject.Name = name
	if err := s.repo.UpdateSubject(ctx, subject); err != nil {
		return nil, fmt.Errorf("error updating subject: %w", err)
	}

	return subject, nil
}

// DeleteSubject removes a catalog entry unless a lesson still carries its
// name, which would strip meaning from historical records.
func (s *DefaultService) DeleteSubject(ctx context.Context, id string) error {
	subject, err := s.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting subject: %w", err)
	}

	if subject == nil {
		return fmt.Errorf("%w: subject %s", ErrNotFound, id)
	}

	count, err := s.repo.CountLessonsForSubject(ctx, subject.Name)
	if err != nil {
		return fmt.Errorf("error counting lessons: %w", err)
	}

	if count > 0 {
		return fmt.Errorf("%w: subject %q is used by %d lesson(s)", ErrConflict, subject.Name, count)
	}

	if err := s.repo.DeleteSubject(ctx, id); err != nil {
		return fmt.Errorf("error deleting subject: %w", err)
	}

	return nil
}

func (s *DefaultService) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.repo.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}

	return subjects, nil
}
