package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7andoka/lets-learn-academy/internal/api/testutils"
	"github.com/7andoka/lets-learn-academy/internal/models"
)

func decimalFromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func TestCreateLessonStampsLinkPrice(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Teacher default is 100 but the student's explicit link says 90;
	// the link must win.
	teacher := testCtx.CreateTeacher(t, "John Doe", "teacher1", 100)
	student := testCtx.CreateStudent(t, "Alice", "student1", testutils.Link(teacher.ID, 90))
	testCtx.CreateSubject(t, "Math")
	teacherJWT := testCtx.TokenFor(t, teacher)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/lessons",
		models.CreateLessonRequest{
			StudentID: student.ID,
			Subject:   "Math",
			Date:      models.NewDate(2024, 6, 1),
			Time:      "10:00",
			Status:    models.AttendancePresent,
		},
		testutils.AuthHeaders(teacherJWT),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response models.LessonResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, teacher.ID, response.Lesson.TeacherID)
	assert.True(t, response.Lesson.SessionPrice.Equal(decimalFromInt(90)),
		"expected link price 90, got %s", response.Lesson.SessionPrice)
}

func TestCreateLessonFallsBackToDefaultPrice(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	teacher1 := testCtx.CreateTeacher(t, "John Doe", "teacher1", 100)
	teacher2 := testCtx.CreateTeacher(t, "Jane Smith", "teacher2", 120)
	// Linked to teacher2 with no explicit price override for teacher1.
	student := testCtx.CreateStudent(t, "Alice", "student1",
		testutils.Link(teacher2.ID, 110))
	testCtx.CreateSubject(t, "Math")

	// No link price for teacher1, so the lesson carries teacher1's
	// default of 100, not teacher2's link price.
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/lessons",
		models.CreateLessonRequest{
			TeacherID: teacher1.ID,
			StudentID: student.ID,
			Subject:   "Math",
			Date:      models.NewDate(2024, 6, 1),
			Time:      "10:00",
			Status:    models.AttendancePresent,
		},
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response models.LessonResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response.Lesson.SessionPrice.Equal(decimalFromInt(100)),
		"expected default price 100, got %s", response.Lesson.SessionPrice)
}

func TestCreateLessonValidation(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	teacher := testCtx.CreateTeacher(t, "John Doe", "teacher1", 100)
	student := testCtx.CreateStudent(t, "Alice", "student1", testutils.Link(teacher.ID, 90))
	testCtx.CreateSubject(t, "Math")
	teacherJWT := testCtx.TokenFor(t, teacher)

	// Test case 1: Unknown subject
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/lessons",
		models.CreateLessonRequest{
			StudentID: student.ID,
			Subject:   "Alchemy",
			Date:      models.NewDate(2024, 6, 1),
			Time:      "10:00",
			Status:    models.AttendancePresent,
		},
		testutils.AuthHeaders(teacherJWT),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 2: Unknown student
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/lessons",
		models.CreateLessonRequest{
			StudentID: "no-such-student",
			Subject:   "Math",
			Date:      models.NewDate(2024, 6, 1),
			Time:      "10:00",
			Status:    models.AttendancePresent,
		},
		testutils.AuthHeaders(teacherJWT),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// Test case 3: A teacher cannot record a lesson for another teacher
	other := testCtx.CreateTeacher(t, "Jane Smith", "teacher2", 120)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/lessons",
		models.CreateLessonRequest{
			TeacherID: other.ID,
			StudentID: student.ID,
			Subject:   "Math",
			Date:      models.NewDate(2024, 6, 1),
			Time:      "10:00",
			Status:    models.AttendancePresent,
		},
		testutils.AuthHeaders(teacherJWT),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test case 4: A student cannot record lessons at all
	studentJWT := testCtx.TokenFor(t, student)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/lessons",
		models.CreateLessonRequest{
			StudentID: student.ID,
			Subject:   "Math",
			Date:      models.NewDate(2024, 6, 1),
			Time:      "10:00",
			Status:    models.AttendancePresent,
		},
		testutils.AuthHeaders(studentJWT),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPriceImmutability(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	teacher := testCtx.CreateTeacher(t, "John Doe", "teacher1", 100)
	student := testCtx.CreateStudent(t, "Alice", "student1", testutils.Link(teacher.ID, 90))
	testCtx.CreateSubject(t, "Math")

	lesson, err := testCtx.Service.CreateLesson(context.Background(), models.CreateLessonRequest{
		TeacherID: teacher.ID,
		StudentID: student.ID,
		Subject:   "Math",
		Date:      models.NewDate(2024, 6, 1),
		Time:      "10:00",
		Status:    models.AttendancePresent,
	})
	require.NoError(t, err)
	require.True(t, lesson.SessionPrice.Equal(decimalFromInt(90)))

	// Raise both the link price and the teacher's default afterwards.
	_, err = testCtx.Service.UpdateUser(context.Background(), student.ID, models.UpdateUserRequest{
		Username:     "student1",
		Name:         "Alice",
		Role:         models.RoleStudent,
		TeacherLinks: []models.TeacherLinkInput{testutils.Link(teacher.ID, 500)},
	})
	require.NoError(t, err)

	price := decimalFromInt(999)
	_, err = testCtx.Service.UpdateUser(context.Background(), teacher.ID, models.UpdateUserRequest{
		Username:            "teacher1",
		Name:                "John Doe",
		Role:                models.RoleTeacher,
		DefaultSessionPrice: &price,
	})
	require.NoError(t, err)

	// The recorded lesson and the statement built from it still carry 90.
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/lessons",
		nil,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.LessonListResponse
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	require.Len(t, response.Lessons, 1)
	assert.True(t, response.Lessons[0].SessionPrice.Equal(decimalFromInt(90)))

	statement, err := testCtx.Service.GetAccountStatement(
		context.Background(), student.ID, models.RoleStudent, nil, nil)
	require.NoError(t, err)
	assert.True(t, statement.TotalDue.Equal(decimalFromInt(90)))
}

func TestAssignedStudentsAndOverview(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	teacher := testCtx.CreateTeacher(t, "John Doe", "teacher1", 100)
	other := testCtx.CreateTeacher(t, "Jane Smith", "teacher2", 120)
	student := testCtx.CreateStudent(t, "Alice", "student1", testutils.Link(teacher.ID, 90))
	testCtx.CreateStudent(t, "Bob", "student2", testutils.Link(other.ID, 110))
	teacherJWT := testCtx.TokenFor(t, teacher)

	// Only Alice is assigned to teacher1.
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/teachers/"+teacher.ID+"/students",
		nil,
		testutils.AuthHeaders(teacherJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var listResponse models.UserListResponse
	err := json.Unmarshal(w.Body.Bytes(), &listResponse)
	assert.NoError(t, err)
	require.Len(t, listResponse.Users, 1)
	assert.Equal(t, student.ID, listResponse.Users[0].ID)

	// A teacher cannot peek at another teacher's roster.
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/teachers/"+other.ID+"/students",
		nil,
		testutils.AuthHeaders(teacherJWT),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// The student sees their own teachers and lessons.
	studentJWT := testCtx.TokenFor(t, student)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/students/"+student.ID+"/overview",
		nil,
		testutils.AuthHeaders(studentJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var overviewResponse models.StudentOverviewResponse
	err = json.Unmarshal(w.Body.Bytes(), &overviewResponse)
	assert.NoError(t, err)
	require.Len(t, overviewResponse.Overview.Teachers, 1)
	assert.Equal(t, teacher.ID, overviewResponse.Overview.Teachers[0].ID)
}
