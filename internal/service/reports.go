package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/7andoka/lets-learn-academy/internal/models"
	"github.com/7andoka/lets-learn-academy/internal/repository"
)

// LessonsByCounterpart counts how many lessons an anchor user had with
// each counterpart: per student for a teacher anchor, per teacher for a
// student anchor. It counts every lesson regardless of attendance and
// ignores dates. This is an activity measure, not a financial one, and
// is deliberately independent of the account statement.
func (s *DefaultService) LessonsByCounterpart(ctx context.Context, anchorID string, direction models.ReportDirection) ([]models.LessonTally, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: unknown report direction %q", ErrInvalidInput, direction)
	}

	anchor, err := s.repo.GetUserByID(ctx, anchorID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if anchor == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, anchorID)
	}

	filter := repository.LessonFilter{}
	if direction == models.ByTeacher {
		filter.TeacherID = anchorID
	} else {
		filter.StudentID = anchorID
	}

	lessons, err := s.repo.FindLessons(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding lessons: %w", err)
	}

	counts := make(map[string]int)
	for _, lesson := range lessons {
		if direction == models.ByTeacher {
			counts[lesson.StudentID]++
		} else {
			counts[lesson.TeacherID]++
		}
	}

	rows := make([]models.LessonTally, 0, len(counts))
	for counterpartID, count := range counts {
		name := "Unknown"
		counterpart, err := s.repo.GetUserByID(ctx, counterpartID)
		if err != nil {
			return nil, fmt.Errorf("error getting counterpart: %w", err)
		}
		if counterpart != nil {
			name = counterpart.Name
		}

		rows = append(rows, models.LessonTally{
			CounterpartID: counterpartID,
			Name:          name,
			LessonCount:   count,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}
