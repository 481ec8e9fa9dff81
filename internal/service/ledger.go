package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/7andoka/lets-learn-academy/internal/models"
	"github.com/7andoka/lets-learn-academy/internal/repository"
)

// GetAccountStatement reconciles a teacher's or student's billable
// lessons against their recorded payments over an optional inclusive
// date window.
//
// Only Present lessons bill; a no-show contributes nothing. Payments are
// matched on the counterpart id alone, both directions netting into the
// same statement (each user only ever has one direction for their role).
// The balance is totalDue - totalPaid without any role-dependent sign
// flip. An inverted window yields an empty statement, not an error.
func (s *DefaultService) GetAccountStatement(ctx context.Context, userID string, role models.Role, from, to *models.Date) (*models.AccountStatement, error) {
	if role != models.RoleTeacher && role != models.RoleStudent {
		return nil, fmt.Errorf("%w: statements exist only for teachers and students", ErrInvalidInput)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil || user.Role != role {
		return nil, fmt.Errorf("%w: no %s with id %s", ErrNotFound, role, userID)
	}

	lessonFilter := repository.LessonFilter{
		Status: models.AttendancePresent,
		From:   from,
		To:     to,
	}
	if role == models.RoleTeacher {
		lessonFilter.TeacherID = userID
	} else {
		lessonFilter.StudentID = userID
	}

	lessons, err := s.repo.FindLessons(ctx, lessonFilter)
	if err != nil {
		return nil, fmt.Errorf("error finding lessons: %w", err)
	}

	payments, err := s.repo.FindPayments(ctx, repository.PaymentFilter{
		UserID: userID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return nil, fmt.Errorf("error finding payments: %w", err)
	}

	totalDue := decimal.Zero
	for _, lesson := range lessons {
		totalDue = totalDue.Add(lesson.SessionPrice)
	}

	totalPaid := decimal.Zero
	for _, payment := range payments {
		totalPaid = totalPaid.Add(payment.Amount)
	}

	return &models.AccountStatement{
		UserID:    userID,
		Role:      role,
		Lessons:   lessons,
		Payments:  payments,
		Entries:   buildEntries(lessons, payments),
		TotalDue:  totalDue,
		TotalPaid: totalPaid,
		Balance:   totalDue.Sub(totalPaid),
	}, nil
}

// buildEntries merges lessons (debit rows) and payments (credit rows)
// into one chronological list. The sort is stable by date; same-day rows
// keep their relative input order.
func buildEntries(lessons []models.Lesson, payments []models.Payment) []models.StatementEntry {
	entries := make([]models.StatementEntry, 0, len(lessons)+len(payments))

	for _, lesson := range lessons {
		entries = append(entries, models.StatementEntry{
			Date:        lesson.Date,
			Description: "Lesson: " + lesson.Subject,
			Debit:       lesson.SessionPrice,
			Credit:      decimal.Zero,
		})
	}

	for _, payment := range payments {
		description := "Payment received"
		if payment.Direction == models.PaidToTeacher {
			description = "Payment made"
		}
		entries = append(entries, models.StatementEntry{
			Date:        payment.Date,
			Description: description,
			Debit:       decimal.Zero,
			Credit:      payment.Amount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	return entries
}

// AddPayment appends one entry to the payment log. The direction must
// match the counterpart's role: money only ever goes to teachers and
// only ever comes from students.
func (s *DefaultService) AddPayment(ctx context.Context, req models.CreatePaymentRequest) (*models.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	user, err := s.repo.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, req.UserID)
	}

	switch req.Direction {
	case models.PaidToTeacher:
		if user.Role != models.RoleTeacher {
			return nil, fmt.Errorf("%w: %s payments require a teacher counterpart", ErrInvalidInput, req.Direction)
		}
	case models.ReceivedFromStudent:
		if user.Role != models.RoleStudent {
			return nil, fmt.Errorf("%w: %s payments require a student counterpart", ErrInvalidInput, req.Direction)
		}
	default:
		return nil, fmt.Errorf("%w: unknown payment direction %q", ErrInvalidInput, req.Direction)
	}

	payment := &models.Payment{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Amount:    req.Amount,
		Date:      req.Date,
		Direction: req.Direction,
	}

	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("error creating payment: %w", err)
	}

	return payment, nil
}
