package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/giglink/giglink/internal/skills"
	"github.com/giglink/giglink/pkg/repository"
)

type ProfileHandler struct {
	userRepo repository.UserRepo
}

func NewProfileHandler(ur repository.UserRepo) *ProfileHandler {
	return &ProfileHandler{userRepo: ur}
}

// Get returns the authenticated user's own profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := RoleFromContext(r.Context())

	user, err := h.userRepo.GetUserByID(r.Context(), role, userID)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}

	writeJSON(w, user, http.StatusOK)
}

type updateProfileRequest struct {
	Email         *string   `json:"email"`
	Name          *string   `json:"name"`
	Bio           *string   `json:"bio"`
	LinkedInURL   *string   `json:"linkedin_url"`
	Website       *string   `json:"website"`
	WalletAddress *string   `json:"wallet_address"`
	Skills        *[]string `json:"skills"`
}

// Update applies a partial profile edit. Changing the bio refreshes the
// extracted skills so the match fallback stays in step with it.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := RoleFromContext(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	user, err := h.userRepo.GetUserByID(ctx, role, userID)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}

	if req.Email != nil {
		if *req.Email == "" {
			http.Error(w, "email cannot be empty", http.StatusBadRequest)
			return
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
		user.AISkills = skills.Extract(*req.Bio)
	}
	if req.LinkedInURL != nil {
		user.LinkedInURL = *req.LinkedInURL
	}
	if req.Website != nil {
		user.Website = *req.Website
	}
	if req.WalletAddress != nil {
		user.WalletAddress = *req.WalletAddress
	}
	if req.Skills != nil {
		user.Skills = *req.Skills
	}

	if err := h.userRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			http.Error(w, "email already in use", http.StatusConflict)
			return
		}
		http.Error(w, "failed to update profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, user, http.StatusOK)
}
