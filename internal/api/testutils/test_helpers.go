package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/7andoka/lets-learn-academy/internal/api"
	"github.com/7andoka/lets-learn-academy/internal/models"
	"github.com/7andoka/lets-learn-academy/internal/repository"
	"github.com/7andoka/lets-learn-academy/internal/service"
)

const testJWTSecret = "test-secret-key"

// TestContext holds all dependencies for tests
type TestContext struct {
	Router     *gin.Engine
	Repository *repository.MemoryRepository
	Service    service.Service
	JWTSecret  []byte
	Admin      *models.User
	AdminJWT   string
}

// SetupTestContext wires the router against an in-memory repository and
// seeds one admin account.
func SetupTestContext(t *testing.T) *TestContext {
	repo := repository.NewMemoryRepository()
	svc := service.NewDefaultService(repo, testJWTSecret, zap.NewNop())
	handler := api.NewHandler(svc)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(testJWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	tc := &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		JWTSecret:  []byte(testJWTSecret),
	}

	tc.Admin = tc.CreateAdmin(t, "Admin User", "admin")
	tc.AdminJWT = tc.TokenFor(t, tc.Admin)

	return tc
}

// CreateAdmin seeds an admin account.
func (tc *TestContext) CreateAdmin(t *testing.T, name, username string) *models.User {
	user, err := tc.Service.CreateUser(context.Background(), models.CreateUserRequest{
		Username: username,
		Password: "testpassword",
		Name:     name,
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err, "Failed to create admin")
	return user
}

// CreateTeacher seeds a teacher with the given default session price.
func (tc *TestContext) CreateTeacher(t *testing.T, name, username string, price int64) *models.User {
	p := decimal.NewFromInt(price)
	user, err := tc.Service.CreateUser(context.Background(), models.CreateUserRequest{
		Username:            username,
		Password:            "testpassword",
		Name:                name,
		Role:                models.RoleTeacher,
		DefaultSessionPrice: &p,
	})
	require.NoError(t, err, "Failed to create teacher")
	return user
}

// CreateStudent seeds a student with the given teacher links.
func (tc *TestContext) CreateStudent(t *testing.T, name, username string, links ...models.TeacherLinkInput) *models.User {
	user, err := tc.Service.CreateUser(context.Background(), models.CreateUserRequest{
		Username:     username,
		Password:     "testpassword",
		Name:         name,
		Role:         models.RoleStudent,
		TeacherLinks: links,
	})
	require.NoError(t, err, "Failed to create student")
	return user
}

// CreateSubject seeds a catalog subject.
func (tc *TestContext) CreateSubject(t *testing.T, name string) *models.Subject {
	subject, err := tc.Service.CreateSubject(context.Background(), name)
	require.NoError(t, err, "Failed to create subject")
	return subject
}

// Link builds a teacher link input for CreateStudent.
func Link(teacherID string, price int64) models.TeacherLinkInput {
	return models.TeacherLinkInput{
		TeacherID:    teacherID,
		SessionPrice: decimal.NewFromInt(price),
	}
}

// TokenFor signs a JWT for the given user.
func (tc *TestContext) TokenFor(t *testing.T, user *models.User) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	})

	tokenString, err := token.SignedString(tc.JWTSecret)
	require.NoError(t, err, "Failed to generate JWT token")

	return tokenString
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
