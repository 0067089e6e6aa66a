package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	appMiddleware "github.com/markdave123-py/newsprint/internal/api/middlewares"
)

// AuthHandler exchanges the operator's password for a JWT. There is a single
// operator account whose bcrypt hash comes from configuration.
type AuthHandler struct {
	user         string
	passwordHash []byte
	secret       string
	ttl          time.Duration
}

func NewAuthHandler(user, passwordHash, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{user: user, passwordHash: []byte(passwordHash), secret: secret, ttl: ttl}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if len(h.passwordHash) == 0 {
		http.Error(w, "login disabled", http.StatusNotFound)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if req.Username != h.user || bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := appMiddleware.IssueToken(h.secret, h.user, h.ttl)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// HashPassword returns the bcrypt hash to put in OPERATOR_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}
