package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mestre-da-redacao/backend/internal/domain/passwordreset"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/validator"
	"github.com/mestre-da-redacao/backend/internal/services"
	"github.com/mestre-da-redacao/backend/internal/testutil"
)

type resetHandlerFixture struct {
	handler   *ResetHandler
	tokenRepo *testutil.MockResetTokenRepository
	mailer    *testutil.MockMailer
}

func newResetHandlerFixture(t *testing.T) *resetHandlerFixture {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	userRepo := testutil.NewMockUserRepository()
	subRepo := testutil.NewMockSubscriptionRepository()
	users := services.NewUserService(userRepo, subRepo, log, bcrypt.MinCost)
	tokenRepo := testutil.NewMockResetTokenRepository()
	mailer := testutil.NewMockMailer()

	resetService := services.NewPasswordResetService(tokenRepo, users, mailer, log,
		"https://mestredaredacao.com.br", time.Hour, bcrypt.MinCost)

	if _, err := users.Register(context.Background(), "aluno@example.com", "Aluno", "senha-antiga"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	return &resetHandlerFixture{
		handler:   NewResetHandler(resetService, log, validator.New()),
		tokenRepo: tokenRepo,
		mailer:    mailer,
	}
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handlerFunc(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestResetHandler_SendResetEmail(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantMails  int
	}{
		{
			name:       "known email issues a token",
			body:       map[string]string{"email": "aluno@example.com"},
			wantStatus: http.StatusOK,
			wantMails:  1,
		},
		{
			name:       "unknown email gets the same response",
			body:       map[string]string{"email": "ninguem@example.com"},
			wantStatus: http.StatusOK,
			wantMails:  0,
		},
		{
			name:       "missing email fails validation",
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResetHandlerFixture(t)

			rr := postJSON(t, f.handler.SendResetEmail, "/api/send-reset-email", tt.body)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %v, want %v", rr.Code, tt.wantStatus)
			}
			if len(f.mailer.ResetEmails) != tt.wantMails {
				t.Errorf("sent %d mails, want %d", len(f.mailer.ResetEmails), tt.wantMails)
			}
		})
	}
}

func TestResetHandler_ResetPassword(t *testing.T) {
	f := newResetHandlerFixture(t)

	rr := postJSON(t, f.handler.SendResetEmail, "/api/send-reset-email",
		map[string]string{"email": "aluno@example.com"})
	if rr.Code != http.StatusOK {
		t.Fatalf("SendResetEmail status = %v", rr.Code)
	}

	var token string
	for _, tok := range f.tokenRepo.Tokens {
		token = tok.Token
	}

	rr = postJSON(t, f.handler.ResetPassword, "/api/reset-password",
		map[string]string{"token": token, "password": "senha-nova-123"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	response := decodeEnvelope(t, rr)
	if response["success"] != true {
		t.Errorf("response = %v, want success", response)
	}
	data, _ := response["data"].(map[string]interface{})
	if data["nextStep"] != "login" {
		t.Errorf("nextStep = %v, want login", data["nextStep"])
	}

	// Replaying the consumed token surfaces the token_used code.
	rr = postJSON(t, f.handler.ResetPassword, "/api/reset-password",
		map[string]string{"token": token, "password": "senha-nova-456"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("replay status = %v, want %v", rr.Code, http.StatusBadRequest)
	}
	response = decodeEnvelope(t, rr)
	errObj, _ := response["error"].(map[string]interface{})
	if errObj["code"] != "token_used" {
		t.Errorf("error code = %v, want token_used", errObj["code"])
	}
}

func TestResetHandler_FullFlow(t *testing.T) {
	f := newResetHandlerFixture(t)

	rr := postJSON(t, f.handler.SendResetEmail, "/api/send-reset-email",
		map[string]string{"email": "aluno@example.com"})
	if rr.Code != http.StatusOK {
		t.Fatalf("SendResetEmail status = %v", rr.Code)
	}

	var token string
	for _, tok := range f.tokenRepo.Tokens {
		token = tok.Token
	}
	rr = postJSON(t, f.handler.ResetPassword, "/api/reset-password",
		map[string]string{"token": token, "password": "senha-nova-123"})
	if rr.Code != http.StatusOK {
		t.Fatalf("ResetPassword status = %v", rr.Code)
	}

	// The staged credential is not live yet.
	rr = postJSON(t, f.handler.CheckResetPassword, "/api/check-reset-password",
		map[string]string{"email": "aluno@example.com", "password": "senha-nova-123"})
	data, _ := decodeEnvelope(t, rr)["data"].(map[string]interface{})
	if data["valid"] != false {
		t.Error("new password should not authenticate before finalize")
	}

	rr = postJSON(t, f.handler.FinalizeReset, "/api/finalize-reset",
		map[string]string{"email": "aluno@example.com", "currentPassword": "senha-antiga"})
	if rr.Code != http.StatusOK {
		t.Fatalf("FinalizeReset status = %v: %s", rr.Code, rr.Body.String())
	}

	rr = postJSON(t, f.handler.CheckResetPassword, "/api/check-reset-password",
		map[string]string{"email": "aluno@example.com", "password": "senha-nova-123"})
	data, _ = decodeEnvelope(t, rr)["data"].(map[string]interface{})
	if data["valid"] != true {
		t.Error("new password should authenticate after finalize")
	}

	for _, tok := range f.tokenRepo.Tokens {
		if tok.Step != passwordreset.StepCompleted {
			t.Errorf("token step = %v, want %v", tok.Step, passwordreset.StepCompleted)
		}
	}
}
