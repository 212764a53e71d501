package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stemsi/acequiz-backend/internal/model"
)

func question(id int) model.Question {
	return model.Question{ID: id, Prompt: "p", Options: []string{"a", "b"}, CorrectAnswer: 0}
}

func fixtureSets() []model.QuestionSet {
	return []model.QuestionSet{
		{ID: "1", Title: "Paper 1", IsAvailable: true, Tags: model.Tags{Category: "competitive"}, Questions: []model.Question{question(1)}},
		{ID: "2", Title: "Paper 2", IsAvailable: false, Tags: model.Tags{Category: "competitive"}, Questions: []model.Question{question(1)}},
		{ID: "phy-9", Title: "Physics 9", IsAvailable: true, Tags: model.Tags{
			Category: "board", Class: "9th", Board: "Punjab", Subject: "Physics", MaterialType: "quiz",
		}, Questions: []model.Question{question(1), question(2)}},
		{ID: "untagged", Title: "Untagged", IsAvailable: true, Questions: []model.Question{question(1)}},
	}
}

func TestRegistryListAvailable(t *testing.T) {
	reg, err := NewRegistry(fixtureSets())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		name   string
		filter Filter
		want   []model.SetID
	}{
		{"no filter returns every available set", Filter{}, []model.SetID{"1", "phy-9", "untagged"}},
		{"competitive path", Filter{Path: model.PathCompetitive}, []model.SetID{"1"}},
		{"full board filter", Filter{
			Path: model.PathBoard, Class: "9th", Board: "Punjab", Subject: "Physics", MaterialType: model.MaterialQuiz,
		}, []model.SetID{"phy-9"}},
		{"mismatched subject", Filter{Path: model.PathBoard, Subject: "Chemistry"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reg.ListAvailable(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sets, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("set %d = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestRegistryResolve(t *testing.T) {
	reg, err := NewRegistry(fixtureSets())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	s, err := reg.Resolve("2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.Title != "Paper 2" {
		t.Errorf("title = %q", s.Title)
	}

	if _, err := reg.Resolve("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNewRegistryRejectsInvalidSets(t *testing.T) {
	tests := []struct {
		name string
		sets []model.QuestionSet
		want error
	}{
		{"duplicate id", []model.QuestionSet{{ID: "a"}, {ID: "a"}}, ErrDuplicateID},
		{"empty id", []model.QuestionSet{{Title: "x"}}, ErrInvalidSet},
		{"no options", []model.QuestionSet{{ID: "a", Questions: []model.Question{{ID: 1}}}}, ErrInvalidSet},
		{"correct answer out of range", []model.QuestionSet{{ID: "a", Questions: []model.Question{
			{ID: 1, Options: []string{"x"}, CorrectAnswer: 1},
		}}}, ErrInvalidSet},
		{"repeated question id", []model.QuestionSet{{ID: "a", Questions: []model.Question{question(1), question(1)}}}, ErrInvalidSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.sets); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	const body = `{
  "question_sets": [
    {
      "id": 1,
      "title": "Paper 1",
      "is_available": true,
      "questions": [
        {"id": 1, "question": "2+2?", "options": ["3", "4"], "correct_answer": 1, "category": "Math"}
      ]
    },
    {
      "id": "vip",
      "title": "Special",
      "is_available": true,
      "secret": "open-sesame",
      "tags": {"category": "competitive"},
      "questions": [
        {"id": 7, "question": "Capital of France?", "options": ["Paris", "Rome"], "correct_answer": 0, "category": "GK"}
      ]
    }
  ]
}`
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("len = %d, want 2", reg.Len())
	}

	p1, err := reg.Resolve("1")
	if err != nil {
		t.Fatalf("numeric id should decode as text: %v", err)
	}
	if p1.Questions[0].CorrectAnswer != 1 || p1.Questions[0].Options[1] != "4" {
		t.Errorf("question decoded as %+v", p1.Questions[0])
	}

	vip, err := reg.Resolve("vip")
	if err != nil {
		t.Fatal(err)
	}
	if !vip.Protected() || vip.Tags.Category != "competitive" {
		t.Errorf("vip decoded as %+v", vip)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestShippedCatalog(t *testing.T) {
	reg, err := LoadFile(filepath.Join("..", "..", "data", "catalog.json"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	competitive := reg.ListAvailable(Filter{Path: model.PathCompetitive})
	if len(competitive) != 2 || competitive[0].Title != "Paper 1" {
		t.Errorf("competitive listing = %d sets", len(competitive))
	}
	for n := 2; n <= 10; n++ {
		s, err := reg.Resolve(model.SetID(strconv.Itoa(n)))
		if err != nil || s.IsAvailable {
			t.Errorf("Paper %d should exist and be unavailable", n)
		}
	}

	protected := 0
	for _, s := range reg.All() {
		if s.Protected() {
			protected++
		}
	}
	if protected != 1 {
		t.Errorf("protected sets = %d, want 1", protected)
	}

	quiz := reg.ListAvailable(Filter{Path: model.PathBoard, Class: "9", Board: "Punjab", Subject: "Physics", MaterialType: model.MaterialQuiz})
	if len(quiz) != 1 {
		t.Errorf("board quiz listing = %d sets", len(quiz))
	}
}
