package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shelfwise/library/backend/library"
	"github.com/shelfwise/library/backend/middleware"
	"github.com/shelfwise/library/backend/models"
	"github.com/shelfwise/library/backend/service"
	"github.com/shelfwise/library/backend/store"
	"github.com/shelfwise/library/backend/utils"
	"golang.org/x/crypto/bcrypt"
)

// Verification purposes.
const (
	PurposeLogin        = "login"
	PurposeRegistration = "registration"
)

// PendingStore holds registration data keyed by phone until verification
// succeeds. Implemented by store.DB.
type PendingStore interface {
	PutPendingRegistration(ctx context.Context, phone, name, role string) error
	PendingRegistrationFor(ctx context.Context, phone string) (*store.PendingRegistration, error)
	DeletePendingRegistration(ctx context.Context, phone string) error
}

type AuthHandler struct {
	Library   *library.Store
	Pending   PendingStore
	OTP       *service.OTPService
	JWTSecret string
	// Predefined admin credentials (from config); the admin user is seeded
	// on first login
	AdminEmail string
	AdminPass  string
}

type RequestCodeRequest struct {
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
	Channel string `json:"channel"`
	// Registration only: held pending until the phone is verified
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

type RequestCodeResponse struct {
	Success        bool   `json:"success"`
	DevelopmentOTP string `json:"development_otp,omitempty"`
}

// RequestCode starts the verification handshake: validates the phone,
// applies the purpose precondition, stashes pending registration data, and
// asks the OTP service to dispatch a code.
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	phone, ok := utils.NormalizePhone(req.Phone)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid phone number")
		return
	}
	channel := strings.ToLower(strings.TrimSpace(req.Channel))
	if channel == "" {
		channel = service.ChannelSMS
	}

	switch req.Purpose {
	case PurposeLogin:
		if h.Library.UserByPhone(phone) == nil {
			jsonError(w, http.StatusNotFound, "phone not registered")
			return
		}
	case PurposeRegistration:
		if h.Library.UserByPhone(phone) != nil {
			jsonError(w, http.StatusConflict, "phone already registered")
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			jsonError(w, http.StatusBadRequest, "name required for registration")
			return
		}
		role := strings.ToLower(strings.TrimSpace(req.Role))
		if role == "" {
			role = models.RoleStudent
		}
		if role == models.RoleAdmin || !models.RoleValid(role) {
			jsonError(w, http.StatusBadRequest, "invalid role; use student or faculty")
			return
		}
		if err := h.Pending.PutPendingRegistration(r.Context(), phone, name, role); err != nil {
			log.Printf("auth: pending registration: %v", err)
			jsonError(w, http.StatusBadGateway, "verification service error")
			return
		}
	default:
		jsonError(w, http.StatusBadRequest, "purpose must be login or registration")
		return
	}

	devCode, err := h.OTP.RequestCode(r.Context(), phone, channel)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChannelUnsupported):
			jsonError(w, http.StatusBadRequest, "delivery channel not supported")
		case errors.Is(err, service.ErrDeliveryFailed):
			jsonError(w, http.StatusBadGateway, "code delivery failed")
		default:
			log.Printf("auth: request code: %v", err)
			jsonError(w, http.StatusBadGateway, "verification service error")
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RequestCodeResponse{Success: true, DevelopmentOTP: devCode})
}

type VerifyCodeRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// VerifyCode completes the handshake. A valid code either materializes the
// pending registration into a new user or resolves the existing user with
// that phone; either way a session token is issued.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	phone, ok := utils.NormalizePhone(req.Phone)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid phone number")
		return
	}
	code := strings.TrimSpace(req.Code)
	if len(code) != 6 {
		jsonError(w, http.StatusBadRequest, "invalid code")
		return
	}

	if err := h.OTP.VerifyCode(r.Context(), phone, code); err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredCode) {
			jsonError(w, http.StatusBadRequest, "invalid or expired code")
			return
		}
		log.Printf("auth: verify code: %v", err)
		jsonError(w, http.StatusBadGateway, "verification service error")
		return
	}

	pending, err := h.Pending.PendingRegistrationFor(r.Context(), phone)
	if err != nil {
		log.Printf("auth: pending lookup: %v", err)
		jsonError(w, http.StatusBadGateway, "verification service error")
		return
	}

	var user *models.User
	if pending != nil {
		user, err = h.Library.CreateUser(r.Context(), pending.Name, phone, pending.Role)
		if errors.Is(err, library.ErrConflict) {
			// Phone got registered between request and verify; fall through
			// to the existing user.
			user = h.Library.UserByPhone(phone)
			err = nil
		}
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if derr := h.Pending.DeletePendingRegistration(r.Context(), phone); derr != nil {
			log.Printf("auth: clear pending: %v", derr)
		}
	} else {
		user = h.Library.UserByPhone(phone)
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "phone not registered")
		return
	}

	token, err := h.createToken(user.ID, user.Role)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "could not create token")
		return
	}
	user.Password = ""
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{Token: token, User: user})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login is the email+password path for the seeded admin account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user := h.Library.UserByEmail(req.Email)
	if user == nil {
		if !strings.EqualFold(req.Email, h.AdminEmail) || req.Password != h.AdminPass {
			jsonError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(h.AdminPass), bcrypt.DefaultCost)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "login failed")
			return
		}
		user, err = h.Library.EnsureAdmin(r.Context(), h.AdminEmail, string(hash))
		if err != nil {
			writeStoreError(w, err)
			return
		}
	} else {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
	}

	token, err := h.createToken(user.ID, user.Role)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "could not create token")
		return
	}
	user.Password = ""
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) createToken(userID, role string) (string, error) {
	claims := &middleware.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour * 7)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.JWTSecret))
}
