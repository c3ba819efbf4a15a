package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dom/contacts-api/internal/api/middleware"
	"github.com/dom/contacts-api/internal/domain"
	"github.com/dom/contacts-api/internal/service"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService   *service.AuthService
	avatarService *service.AvatarService
}

func NewAuthHandler(authService *service.AuthService, avatarService *service.AvatarService) *AuthHandler {
	return &AuthHandler{authService: authService, avatarService: avatarService}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Avatar    *string `json:"avatar"`
	Confirmed bool    `json:"confirmed"`
}

type SignupResponse struct {
	User   UserResponse `json:"user"`
	Detail string       `json:"detail"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Username, email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			http.Error(w, "Account already exists", http.StatusConflict)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, SignupResponse{
		User:   toUserResponse(user),
		Detail: "User successfully created",
	})
}

// Login accepts the password-grant form shape (username holds the email) and
// falls back to a JSON body with the same field names.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email, password, ok := loginCredentials(r)
	if !ok {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	pair, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    email,
		Password: password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail):
			http.Error(w, "Invalid email", http.StatusUnauthorized)
		case errors.Is(err, domain.ErrEmailNotConfirmed):
			http.Error(w, "Email not confirmed", http.StatusUnauthorized)
		case errors.Is(err, domain.ErrInvalidPassword):
			http.Error(w, "Invalid password", http.StatusUnauthorized)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse(pair))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		http.Error(w, "Authorization header required", http.StatusUnauthorized)
		return
	}

	pair, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse(pair))
}

func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	already, err := h.authService.ConfirmEmail(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrVerification) {
			http.Error(w, "Verification error", http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	msg := "Email confirmed"
	if already {
		msg = "Your email is already confirmed"
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

type RequestEmailRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) RequestEmail(w http.ResponseWriter, r *http.Request) {
	var req RequestEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	already, err := h.authService.RequestVerification(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	msg := "Check your email for confirmation."
	if already {
		msg = "Your email is already confirmed"
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// maxAvatarBytes caps avatar uploads at 5 MiB.
const maxAvatarBytes = 5 << 20

func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		http.Error(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	url, err := h.avatarService.SetAvatar(r.Context(), user, contentType, data)
	if err != nil {
		http.Error(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*string{"url": url})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func loginCredentials(r *http.Request) (email, password string, ok bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", "", false
		}
		email, password = req.Username, req.Password
	} else {
		if err := r.ParseForm(); err != nil {
			return "", "", false
		}
		email = r.PostFormValue("username")
		password = r.PostFormValue("password")
	}

	if email == "" || password == "" {
		return "", "", false
	}
	return email, password, true
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Avatar:    user.Avatar,
		Confirmed: user.Confirmed,
	}
}

func tokenResponse(pair *service.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
