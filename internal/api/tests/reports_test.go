package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7andoka/lets-learn-academy/internal/api/testutils"
	"github.com/7andoka/lets-learn-academy/internal/models"
)

func TestLessonReport(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	teacher := testCtx.CreateTeacher(t, "John Doe", "teacher1", 100)
	alice := testCtx.CreateStudent(t, "Alice", "student1", testutils.Link(teacher.ID, 90))
	bob := testCtx.CreateStudent(t, "Bob", "student2", testutils.Link(teacher.ID, 110))
	testCtx.CreateSubject(t, "Math")

	ctx := context.Background()

	// Two lessons with Alice (one a no-show) and one with Bob. The
	// report is an activity count: attendance must not matter.
	for _, lesson := range []struct {
		studentID string
		day       int
		status    models.AttendanceStatus
	}{
		{alice.ID, 1, models.AttendancePresent},
		{alice.ID, 8, models.AttendanceAbsent},
		{bob.ID, 2, models.AttendancePresent},
	} {
		_, err := testCtx.Service.CreateLesson(ctx, models.CreateLessonRequest{
			TeacherID: teacher.ID,
			StudentID: lesson.studentID,
			Subject:   "Math",
			Date:      models.NewDate(2024, 6, lesson.day),
			Time:      "10:00",
			Status:    lesson.status,
		})
		require.NoError(t, err)
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/lessons?anchorId="+teacher.ID+"&direction=byTeacher",
		nil,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.ReportResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	require.Len(t, response.Rows, 2)
	assert.Equal(t, "Alice", response.Rows[0].Name)
	assert.Equal(t, 2, response.Rows[0].LessonCount)
	assert.Equal(t, "Bob", response.Rows[1].Name)
	assert.Equal(t, 1, response.Rows[1].LessonCount)

	// The student-anchored view of the same data.
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/lessons?anchorId="+alice.ID+"&direction=byStudent",
		nil,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	require.Len(t, response.Rows, 1)
	assert.Equal(t, teacher.ID, response.Rows[0].CounterpartID)
	assert.Equal(t, 2, response.Rows[0].LessonCount)
}

func TestLessonReportErrors(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	teacher := testCtx.CreateTeacher(t, "John Doe", "teacher1", 100)

	// Unknown anchor
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/lessons?anchorId=no-such-user&direction=byTeacher",
		nil,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// Bad direction
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/lessons?anchorId="+teacher.ID+"&direction=sideways",
		nil,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A teacher can pull their own report but not another user's.
	teacherJWT := testCtx.TokenFor(t, teacher)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/lessons?anchorId="+teacher.ID+"&direction=byTeacher",
		nil,
		testutils.AuthHeaders(teacherJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/lessons?anchorId="+testCtx.Admin.ID+"&direction=byTeacher",
		nil,
		testutils.AuthHeaders(teacherJWT),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
