package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/yusufkecer/body-measurements-backend/internal/domain"
	"github.com/yusufkecer/body-measurements-backend/internal/logger"
	"github.com/yusufkecer/body-measurements-backend/internal/middleware"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type AccountStore interface {
	Create(ctx context.Context, email, passwordHash string) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type AuthHandler struct {
	jwtSecret  string
	repo       AccountStore
	bcryptCost int
}

func NewAuthHandler(jwtSecret string, repo AccountStore) *AuthHandler {
	return &AuthHandler{
		jwtSecret:  jwtSecret,
		repo:       repo,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email, ok := validateCredentials(w, req)
	if !ok {
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	accountID, err := h.repo.Create(r.Context(), email, string(passwordHash))
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		logger.Error("[register] failed to create account for %s: %v", email, err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	token, err := middleware.GenerateToken(accountID, email, h.jwtSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	logger.Info("[register] account %d created", accountID)
	writeJSON(w, http.StatusCreated, domain.TokenResponse{Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email, ok := validateCredentials(w, req)
	if !ok {
		return
	}

	account, err := h.repo.GetByEmail(r.Context(), email)
	if err != nil {
		logger.Error("[login] failed to look up %s: %v", email, err)
		writeError(w, http.StatusInternalServerError, "failed to login")
		return
	}
	if account == nil {
		logger.Debug("[login] unknown email %s", email)
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("[login] wrong password for account %d", account.ID)
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := middleware.GenerateToken(account.ID, account.Email, h.jwtSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, domain.TokenResponse{Token: token})
}

// validateCredentials normalizes the email and checks that both fields are
// present and the email looks like one.
func validateCredentials(w http.ResponseWriter, req domain.TokenRequest) (string, bool) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return "", false
	}
	at := strings.Index(email, "@")
	if at <= 0 || !strings.Contains(email[at:], ".") {
		writeError(w, http.StatusBadRequest, "invalid email format")
		return "", false
	}
	return email, true
}
