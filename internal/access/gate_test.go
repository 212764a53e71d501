package access

import (
	"testing"

	"github.com/stemsi/acequiz-backend/internal/model"
)

func TestGate(t *testing.T) {
	g := NewGate([]model.QuestionSet{
		{ID: "open"},
		{ID: "locked", Secret: "s3cret"},
	})

	if g.RequiresSecret("open") {
		t.Error("open set should not require a secret")
	}
	if !g.RequiresSecret("locked") {
		t.Error("locked set should require a secret")
	}

	tests := []struct {
		name     string
		id       model.SetID
		supplied string
		want     Decision
	}{
		{"unprotected", "open", "", Granted},
		{"exact match", "locked", "s3cret", Granted},
		{"wrong secret", "locked", "guess", Denied},
		{"case differs", "locked", "S3CRET", Denied},
		{"prefix only", "locked", "s3c", Denied},
		{"trailing space", "locked", "s3cret ", Denied},
		{"empty", "locked", "", Denied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Authenticate(tt.id, tt.supplied); got != tt.want {
				t.Errorf("Authenticate(%s, %q) = %s, want %s", tt.id, tt.supplied, got, tt.want)
			}
		})
	}
}

func TestGateAllowsUnboundedRetries(t *testing.T) {
	g := NewGate([]model.QuestionSet{{ID: "locked", Secret: "pw"}})

	for i := 0; i < 1000; i++ {
		if g.Authenticate("locked", "nope") != Denied {
			t.Fatalf("attempt %d unexpectedly granted", i)
		}
	}
	if g.Authenticate("locked", "pw") != Granted {
		t.Fatal("correct secret denied after repeated failures")
	}
}
