package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7andoka/lets-learn-academy/internal/models"
	"github.com/7andoka/lets-learn-academy/internal/service"
)

// Handler wires the service layer to HTTP routes
type Handler struct {
	service service.Service
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service) *Handler {
	return &Handler{
		service: svc,
	}
}

// SetupRoutes registers all API routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.POST("/auth/login", h.Login)

	authed := api.Group("", AuthMiddleware())
	{
		authed.GET("/teachers", h.ListTeachers)
		authed.GET("/subjects", h.ListSubjects)
		authed.POST("/lessons", RequireRole(models.RoleAdmin, models.RoleTeacher), h.CreateLesson)
		authed.GET("/teachers/:id/lessons", h.TeacherLessons)
		authed.GET("/teachers/:id/students", h.AssignedStudents)
		authed.GET("/students/:id/overview", h.StudentOverview)
		authed.GET("/accounts/statement", h.GetAccountStatement)
		authed.GET("/reports/lessons", h.LessonReport)
	}

	admin := authed.Group("", RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)
		admin.PUT("/users/:id", h.UpdateUser)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.GET("/students", h.ListStudents)
		admin.POST("/subjects", h.CreateSubject)
		admin.PUT("/subjects/:id", h.UpdateSubject)
		admin.DELETE("/subjects/:id", h.DeleteSubject)
		admin.GET("/lessons", h.ListLessons)
		admin.POST("/payments", h.AddPayment)
	}
}

// respondError translates service errors into HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		code = "NOT_FOUND"
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
		code = "CONFLICT"
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
		code = "INVALID_INPUT"
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		code = "UNAUTHORIZED"
	}

	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: err.Error(),
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "INVALID_INPUT",
		Message: err.Error(),
	})
}

func respondForbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, models.ErrorResponse{
		Status:  "error",
		Code:    "FORBIDDEN",
		Message: "Insufficient permissions",
	})
}

// Auth handlers
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// User directory handlers
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserListResponse{Status: "success", Users: users})
}

func (h *Handler) ListTeachers(c *gin.Context) {
	teachers, err := h.service.ListUsersByRole(c.Request.Context(), models.RoleTeacher)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserListResponse{Status: "success", Users: teachers})
}

func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.service.ListUsersByRole(c.Request.Context(), models.RoleStudent)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserListResponse{Status: "success", Users: students})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.UserResponse{Status: "success", User: user})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserResponse{Status: "success", User: user})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Status: "success", Message: "User deleted"})
}

// Subject catalog handlers
func (h *Handler) ListSubjects(c *gin.Context) {
	subjects, err := h.service.ListSubjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SubjectListResponse{Status: "success", Subjects: subjects})
}

func (h *Handler) CreateSubject(c *gin.Context) {
	var req models.SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	subject, err := h.service.CreateSubject(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SubjectResponse{Status: "success", Subject: subject})
}

func (h *Handler) UpdateSubject(c *gin.Context) {
	var req models.SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	subject, err := h.service.UpdateSubject(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SubjectResponse{Status: "success", Subject: subject})
}

func (h *Handler) DeleteSubject(c *gin.Context) {
	if err := h.service.DeleteSubject(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Status: "success", Message: "Subject deleted"})
}

// Lesson handlers
func (h *Handler) CreateLesson(c *gin.Context) {
	var req models.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// A teacher records lessons for themselves; only an admin may name
	// another teacher.
	if c.MustGet("role").(models.Role) == models.RoleTeacher {
		callerID := c.MustGet("userId").(string)
		if req.TeacherID == "" {
			req.TeacherID = callerID
		}
		if req.TeacherID != callerID {
			respondForbidden(c)
			return
		}
	}

	lesson, err := h.service.CreateLesson(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.LessonResponse{Status: "success", Lesson: lesson})
}

func (h *Handler) ListLessons(c *gin.Context) {
	lessons, err := h.service.ListLessons(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.LessonListResponse{Status: "success", Lessons: lessons})
}

func (h *Handler) TeacherLessons(c *gin.Context) {
	id := c.Param("id")
	if !callerCanAccess(c, id) {
		respondForbidden(c)
		return
	}

	lessons, err := h.service.TeacherLessons(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.LessonListResponse{Status: "success", Lessons: lessons})
}

func (h *Handler) AssignedStudents(c *gin.Context) {
	id := c.Param("id")
	if !callerCanAccess(c, id) {
		respondForbidden(c)
		return
	}

	students, err := h.service.AssignedStudents(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserListResponse{Status: "success", Users: students})
}

func (h *Handler) StudentOverview(c *gin.Context) {
	id := c.Param("id")
	if !callerCanAccess(c, id) {
		respondForbidden(c)
		return
	}

	overview, err := h.service.StudentOverview(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StudentOverviewResponse{Status: "success", Overview: overview})
}

// Ledger handlers
func (h *Handler) GetAccountStatement(c *gin.Context) {
	userID := c.Query("userId")
	role := models.Role(c.Query("role"))

	if !callerCanAccess(c, userID) {
		respondForbidden(c)
		return
	}

	from, err := parseDateQuery(c, "startDate")
	if err != nil {
		respondBindError(c, err)
		return
	}

	to, err := parseDateQuery(c, "endDate")
	if err != nil {
		respondBindError(c, err)
		return
	}

	statement, err := h.service.GetAccountStatement(c.Request.Context(), userID, role, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatementResponse{Status: "success", Statement: statement})
}

func (h *Handler) AddPayment(c *gin.Context) {
	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	payment, err := h.service.AddPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.PaymentResponse{Status: "success", Payment: payment})
}

// Report handlers
func (h *Handler) LessonReport(c *gin.Context) {
	anchorID := c.Query("anchorId")
	direction := models.ReportDirection(c.Query("direction"))

	if !callerCanAccess(c, anchorID) {
		respondForbidden(c)
		return
	}

	rows, err := h.service.LessonsByCounterpart(c.Request.Context(), anchorID, direction)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ReportResponse{Status: "success", Rows: rows})
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter.
func parseDateQuery(c *gin.Context, name string) (*models.Date, error) {
	value := c.Query(name)
	if value == "" {
		return nil, nil
	}

	date, err := models.ParseDate(value)
	if err != nil {
		return nil, err
	}

	return &date, nil
}
