package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/acequiz-backend/internal/model"
)

func bindBody(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBindIdentity(t *testing.T) {
	Setup()

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"canonical id", `{"name":"Ayesha","candidate_id":"35202-1234567-1"}`, ""},
		{"digits only", `{"name":"Ayesha","candidate_id":"3520212345671"}`, ""},
		{"short id", `{"name":"Ayesha","candidate_id":"35202-12"}`, "candidate_id"},
		{"missing name", `{"candidate_id":"35202-1234567-1"}`, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req model.SubmitIdentityRequest
			fields := bindBody(t, tt.body, &req)
			if tt.wantField == "" {
				if fields != nil {
					t.Fatalf("unexpected errors: %v", fields)
				}
				return
			}
			msg, ok := fields[tt.wantField]
			if !ok {
				t.Fatalf("expected error on %q, got %v", tt.wantField, fields)
			}
			if msg == "" {
				t.Error("empty translated message")
			}
		})
	}
}

func TestBindCandidateIDMessage(t *testing.T) {
	Setup()

	var req model.SubmitIdentityRequest
	fields := bindBody(t, `{"name":"A","candidate_id":"12"}`, &req)
	if !strings.Contains(fields["candidate_id"], "NNNNN-NNNNNNN-N") {
		t.Errorf("message = %q", fields["candidate_id"])
	}
}

func TestBindMalformedJSON(t *testing.T) {
	Setup()

	var req model.ChoosePathRequest
	fields := bindBody(t, `{"path":`, &req)
	if _, ok := fields["detail"]; !ok {
		t.Errorf("expected detail, got %v", fields)
	}
}

func TestBindOneOf(t *testing.T) {
	Setup()

	var req model.ChoosePathRequest
	if fields := bindBody(t, `{"path":"arts"}`, &req); fields["path"] == "" {
		t.Errorf("expected path error, got %v", fields)
	}
}
