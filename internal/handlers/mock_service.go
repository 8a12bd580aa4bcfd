package handlers

import (
	"context"
	"net/http"

	"finance_tracker/internal/models"
	"finance_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerUser models.User
	registerPair service.TokenPair
	registerErr  error
	loginUser    models.User
	loginPair    service.TokenPair
	loginErr     error
	verifyID     string
	verifyErr    error

	lastRegister    service.RegisterParams
	lastLoginEmail  string
	lastLoginPass   string
	lastVerifyToken string
}

func (m *mockAuth) Register(ctx context.Context, p service.RegisterParams) (models.User, service.TokenPair, error) {
	m.lastRegister = p
	return m.registerUser, m.registerPair, m.registerErr
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (models.User, service.TokenPair, error) {
	m.lastLoginEmail = email
	m.lastLoginPass = password
	return m.loginUser, m.loginPair, m.loginErr
}

func (m *mockAuth) VerifyAccessToken(token string) (string, error) {
	m.lastVerifyToken = token
	return m.verifyID, m.verifyErr
}

type mockExpenses struct {
	createResp models.Expense
	createErr  error
	listResp   []models.Expense
	listErr    error
	deleteResp models.Expense
	deleteErr  error

	lastCreateUserID string
	lastCreateParams service.CreateExpenseParams
	lastListUserID   string
	lastListFilter   service.ExpenseFilter
	lastDeleteUserID string
	lastDeleteID     string
	createCalls      int
	listCalls        int
	deleteCalls      int
}

func (m *mockExpenses) Create(ctx context.Context, userID string, p service.CreateExpenseParams) (models.Expense, error) {
	m.createCalls++
	m.lastCreateUserID = userID
	m.lastCreateParams = p
	return m.createResp, m.createErr
}

func (m *mockExpenses) List(ctx context.Context, userID string, f service.ExpenseFilter) ([]models.Expense, error) {
	m.listCalls++
	m.lastListUserID = userID
	m.lastListFilter = f
	return m.listResp, m.listErr
}

func (m *mockExpenses) Delete(ctx context.Context, userID, expenseID string) (models.Expense, error) {
	m.deleteCalls++
	m.lastDeleteUserID = userID
	m.lastDeleteID = expenseID
	return m.deleteResp, m.deleteErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
