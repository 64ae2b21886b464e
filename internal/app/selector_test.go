package app_test

import (
	"math/rand"
	"testing"

	"rich-trivia-service/internal/app"
	"rich-trivia-service/internal/domain"
)

func TestSelectSequenceOnePerLevelAscending(t *testing.T) {
	catalog := []domain.Question{
		{ID: "q3a", Level: 3, Money: 1000, Answers: twoAnswers()},
		{ID: "q1a", Level: 1, Money: 100, Answers: twoAnswers()},
		{ID: "q1b", Level: 1, Money: 100, Answers: twoAnswers()},
		{ID: "q2a", Level: 2, Money: 500, Answers: twoAnswers()},
		{ID: "q2b", Level: 2, Money: 500, Answers: twoAnswers()},
		{ID: "q3b", Level: 3, Money: 1000, Answers: twoAnswers()},
	}

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		sequence, err := app.SelectSequence(catalog, rnd)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if len(sequence) != 3 {
			t.Fatalf("expected 3 questions, got %d", len(sequence))
		}
		for idx, q := range sequence {
			if q.Level != idx+1 {
				t.Fatalf("expected level %d at index %d, got %d", idx+1, idx, q.Level)
			}
		}
	}
}

func TestSelectSequenceSingleQuestionIsDeterministic(t *testing.T) {
	catalog := []domain.Question{
		{ID: "only", Level: 1, Money: 100, Answers: twoAnswers()},
	}

	rnd := rand.New(rand.NewSource(7))
	sequence, err := app.SelectSequence(catalog, rnd)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(sequence) != 1 || sequence[0].ID != "only" {
		t.Fatalf("expected the single question, got %+v", sequence)
	}
}

func TestSelectSequenceEmptyCatalog(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	if _, err := app.SelectSequence(nil, rnd); err != domain.ErrCatalogEmpty {
		t.Fatalf("expected ErrCatalogEmpty, got %v", err)
	}
}

func TestSelectSequenceSparseLevels(t *testing.T) {
	catalog := []domain.Question{
		{ID: "q5", Level: 5, Money: 5000, Answers: twoAnswers()},
		{ID: "q2", Level: 2, Money: 200, Answers: twoAnswers()},
	}

	rnd := rand.New(rand.NewSource(3))
	sequence, err := app.SelectSequence(catalog, rnd)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(sequence) != 2 || sequence[0].ID != "q2" || sequence[1].ID != "q5" {
		t.Fatalf("expected q2 then q5, got %+v", sequence)
	}
}

func twoAnswers() []domain.Answer {
	return []domain.Answer{
		{ID: "a", Text: "Wrong", Correct: false},
		{ID: "b", Text: "Right", Correct: true},
	}
}
