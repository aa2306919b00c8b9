package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/giglink/giglink/internal/skills"
	"github.com/giglink/giglink/pkg/models"
	"github.com/giglink/giglink/pkg/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	userRepo      repository.UserRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{userRepo: ur, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signupRequest struct {
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	Password      string   `json:"password"`
	Name          string   `json:"name"`
	Bio           string   `json:"bio"`
	LinkedInURL   string   `json:"linkedin_url"`
	Website       string   `json:"website"`
	WalletAddress string   `json:"wallet_address"`
	Skills        []string `json:"skills"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	Role  models.Role `json:"role"`
}

// roleFromPath reads the {role} path variable of the signup/login routes.
func roleFromPath(r *http.Request) (models.Role, bool) {
	role := models.Role(mux.Vars(r)["role"])
	return role, role.Valid()
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	role, ok := roleFromPath(r)
	if !ok {
		http.Error(w, "Unknown role", http.StatusNotFound)
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		Role:          role,
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  string(hash),
		Name:          req.Name,
		Bio:           req.Bio,
		LinkedInURL:   req.LinkedInURL,
		Website:       req.Website,
		WalletAddress: req.WalletAddress,
		Skills:        req.Skills,
		AISkills:      skills.Extract(req.Bio),
	}

	userID, err := h.userRepo.CreateUser(r.Context(), &user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			http.Error(w, "Username or email already in use", http.StatusConflict)
			return
		}
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	tokenStr, err := h.issueToken(userID, req.Username, role)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, Role: role}, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	role, ok := roleFromPath(r)
	if !ok {
		http.Error(w, "Unknown role", http.StatusNotFound)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	user, err := h.userRepo.GetUserByUsername(r.Context(), role, req.Username)
	if err != nil || user == nil {
		http.Error(w, "Incorrect credentials", http.StatusUnauthorized)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "Incorrect credentials", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.issueToken(user.ID, user.Username, role)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, Role: role}, http.StatusOK)
}

func (h *AuthHandler) issueToken(userID int64, username string, role models.Role) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"role":     string(role),
		"exp":      time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}
