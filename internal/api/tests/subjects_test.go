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

func TestSubjectCatalog(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Create a subject
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/subjects",
		models.SubjectRequest{Name: "Math"},
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response models.SubjectResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	mathID := response.Subject.ID

	// Test case 2: Case-insensitive duplicate
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/subjects",
		models.SubjectRequest{Name: "MATH"},
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 3: Rename onto another subject's name
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/subjects",
		models.SubjectRequest{Name: "Science"},
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	scienceID := response.Subject.ID

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/subjects/"+scienceID,
		models.SubjectRequest{Name: "math"},
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 4: Renaming to itself with different casing is allowed
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/subjects/"+mathID,
		models.SubjectRequest{Name: "Mathematics"},
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	// Test case 5: Unknown subject
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		"/api/subjects/no-such-subject",
		nil,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSubjectGuard(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	teacher := testCtx.CreateTeacher(t, "John Doe", "teacher1", 100)
	student := testCtx.CreateStudent(t, "Alice", "student1", testutils.Link(teacher.ID, 90))
	math := testCtx.CreateSubject(t, "Math")
	science := testCtx.CreateSubject(t, "Science")

	_, err := testCtx.Service.CreateLesson(context.Background(), models.CreateLessonRequest{
		TeacherID: teacher.ID,
		StudentID: student.ID,
		Subject:   "Math",
		Date:      models.NewDate(2024, 6, 1),
		Time:      "10:00",
		Status:    models.AttendancePresent,
	})
	require.NoError(t, err)

	// Test case 1: A subject used by a lesson cannot be deleted.
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		"/api/subjects/"+math.ID,
		nil,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 2: An unused subject deletes fine.
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		"/api/subjects/"+science.ID,
		nil,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)
}
