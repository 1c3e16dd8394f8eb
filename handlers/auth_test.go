package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/library/backend/library"
	"github.com/shelfwise/library/backend/models"
	"github.com/shelfwise/library/backend/service"
	"github.com/shelfwise/library/backend/store"
)

type memPendingStore struct {
	pending map[string]*store.PendingRegistration
}

func newMemPendingStore() *memPendingStore {
	return &memPendingStore{pending: make(map[string]*store.PendingRegistration)}
}

func (m *memPendingStore) PutPendingRegistration(ctx context.Context, phone, name, role string) error {
	m.pending[phone] = &store.PendingRegistration{Phone: phone, Name: name, Role: role, CreatedAt: time.Now()}
	return nil
}

func (m *memPendingStore) PendingRegistrationFor(ctx context.Context, phone string) (*store.PendingRegistration, error) {
	return m.pending[phone], nil
}

func (m *memPendingStore) DeletePendingRegistration(ctx context.Context, phone string) error {
	delete(m.pending, phone)
	return nil
}

type memCodes struct {
	codes map[string]string
	exp   map[string]time.Time
}

func newMemCodes() *memCodes {
	return &memCodes{codes: make(map[string]string), exp: make(map[string]time.Time)}
}

func (m *memCodes) PutCode(ctx context.Context, phone, code string, expiresAt time.Time) error {
	m.codes[phone] = code
	m.exp[phone] = expiresAt
	return nil
}

func (m *memCodes) ClaimCode(ctx context.Context, phone, code string, now time.Time) (bool, error) {
	if m.codes[phone] != code || !m.exp[phone].After(now) {
		return false, nil
	}
	delete(m.codes, phone)
	delete(m.exp, phone)
	return true, nil
}

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	lib, err := library.Open(context.Background(), library.NewMemorySnapshots())
	require.NoError(t, err)
	return &AuthHandler{
		Library:    lib,
		Pending:    newMemPendingStore(),
		OTP:        service.NewOTPService(newMemCodes(), nil),
		JWTSecret:  "test-secret",
		AdminEmail: "admin@library.test",
		AdminPass:  "admin-pass",
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestRegistrationRoundTrip(t *testing.T) {
	h := newAuthHandler(t)
	phone := "9876543210"

	w := postJSON(t, h.RequestCode, RequestCodeRequest{
		Phone:   phone,
		Purpose: PurposeRegistration,
		Name:    "Asha Rao",
		Role:    models.RoleStudent,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var reqResp RequestCodeResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&reqResp))
	require.True(t, reqResp.Success)
	require.Len(t, reqResp.DevelopmentOTP, 6)

	w = postJSON(t, h.VerifyCode, VerifyCodeRequest{Phone: phone, Code: reqResp.DevelopmentOTP})
	require.Equal(t, http.StatusOK, w.Code)
	var auth AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&auth))
	assert.NotEmpty(t, auth.Token)
	require.NotNil(t, auth.User)
	assert.Equal(t, "Asha Rao", auth.User.Name)
	assert.Equal(t, models.RoleStudent, auth.User.Role)
	assert.Equal(t, "+919876543210", auth.User.Phone)

	// Exactly one user exists for the phone, and login now finds it.
	user := h.Library.UserByPhone("+919876543210")
	require.NotNil(t, user)
	assert.Equal(t, auth.User.ID, user.ID)

	w = postJSON(t, h.RequestCode, RequestCodeRequest{Phone: phone, Purpose: PurposeLogin})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestCodePreconditions(t *testing.T) {
	h := newAuthHandler(t)
	_, err := h.Library.CreateUser(context.Background(), "Existing", "+919876543210", models.RoleFaculty)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  RequestCodeRequest
		want int
	}{
		{"login unknown phone", RequestCodeRequest{Phone: "9000000001", Purpose: PurposeLogin}, http.StatusNotFound},
		{"register taken phone", RequestCodeRequest{Phone: "9876543210", Purpose: PurposeRegistration, Name: "X"}, http.StatusConflict},
		{"register without name", RequestCodeRequest{Phone: "9000000001", Purpose: PurposeRegistration}, http.StatusBadRequest},
		{"register as admin", RequestCodeRequest{Phone: "9000000001", Purpose: PurposeRegistration, Name: "X", Role: models.RoleAdmin}, http.StatusBadRequest},
		{"bad purpose", RequestCodeRequest{Phone: "9000000001", Purpose: "reset"}, http.StatusBadRequest},
		{"bad phone", RequestCodeRequest{Phone: "12345", Purpose: PurposeLogin}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.RequestCode, tt.req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestVerifyCodeRejectsBadCode(t *testing.T) {
	h := newAuthHandler(t)
	phone := "9876543210"

	w := postJSON(t, h.RequestCode, RequestCodeRequest{
		Phone: phone, Purpose: PurposeRegistration, Name: "Asha",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var reqResp RequestCodeResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&reqResp))

	wrong := "000000"
	if wrong == reqResp.DevelopmentOTP {
		wrong = "000001"
	}
	w = postJSON(t, h.VerifyCode, VerifyCodeRequest{Phone: phone, Code: wrong})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No user was created on the failed attempt.
	assert.Nil(t, h.Library.UserByPhone("+919876543210"))

	// The real code still completes registration.
	w = postJSON(t, h.VerifyCode, VerifyCodeRequest{Phone: phone, Code: reqResp.DevelopmentOTP})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, h.Library.UserByPhone("+919876543210"))
}

func TestLoginSeedsAdmin(t *testing.T) {
	h := newAuthHandler(t)

	w := postJSON(t, h.Login, LoginRequest{Email: "admin@library.test", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, h.Login, LoginRequest{Email: "admin@library.test", Password: "admin-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	var auth AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&auth))
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, models.RoleAdmin, auth.User.Role)

	// Second login hits the seeded user and checks the bcrypt hash.
	w = postJSON(t, h.Login, LoginRequest{Email: "admin@library.test", Password: "admin-pass"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = postJSON(t, h.Login, LoginRequest{Email: "admin@library.test", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
