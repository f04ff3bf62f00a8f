package service

import (
	"quizgen_backend/internal/repository"
	"testing"
)

func TestStatsService_Collect(t *testing.T) {
	db := newTestDB(t)
	questions := NewQuestionService(repository.NewQuestionRepository(db), nil)
	results := repository.NewQuizResultRepository(db)
	s := NewStatsService(questions.QuestionRepo, results)

	empty, err := s.Collect(0)
	if err != nil {
		t.Fatalf("collect on empty db: %v", err)
	}
	if empty.TotalQuestions != 0 || empty.AverageScore != 0 || len(empty.QuestionsByTag) != 0 {
		t.Fatalf("unexpected empty stats: %+v", empty)
	}

	if _, err := questions.CreateBatch([]QuestionInput{
		{Text: "Q1", CorrectAnswer: "A", Tags: []string{"Go"}, Difficulty: "junior"},
		{Text: "Q2", CorrectAnswer: "A", Tags: []string{"Go", "SQL"}, Difficulty: "JUNIOR"},
		{Text: "Q3", CorrectAnswer: "A", Tags: []string{"SQL", "Redis"}, Difficulty: "SENIOR"},
	}); err != nil {
		t.Fatal(err)
	}

	u1, u2 := uint(1), uint(2)
	storeResult(t, results, &u1, 1, 3)
	storeResult(t, results, &u1, 3, 3)
	storeResult(t, results, &u2, 2, 3)
	storeResult(t, results, nil, 0, 3)

	st, err := s.Collect(2)
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalQuestions != 3 || st.TotalResults != 4 {
		t.Fatalf("totals = %d/%d", st.TotalQuestions, st.TotalResults)
	}
	if st.AverageScore != 1.5 {
		t.Errorf("average = %v", st.AverageScore)
	}
	if st.MinScore != 2 || st.ResultsAtMinScore != 2 {
		t.Errorf("min score stats = %d/%d", st.MinScore, st.ResultsAtMinScore)
	}

	if len(st.QuestionsByLevel) != 2 || st.QuestionsByLevel[0].Difficulty != "JUNIOR" || st.QuestionsByLevel[0].Count != 2 {
		t.Errorf("by difficulty = %+v", st.QuestionsByLevel)
	}

	wantTags := []TagCount{{"Go", 2}, {"SQL", 2}, {"Redis", 1}}
	if len(st.QuestionsByTag) != len(wantTags) {
		t.Fatalf("by tag = %+v", st.QuestionsByTag)
	}
	for i, w := range wantTags {
		if st.QuestionsByTag[i] != w {
			t.Errorf("by tag[%d] = %+v, want %+v", i, st.QuestionsByTag[i], w)
		}
	}

	if len(st.MostActiveUsers) != 2 || st.MostActiveUsers[0].UserID != 1 || st.MostActiveUsers[0].Results != 2 {
		t.Errorf("most active = %+v", st.MostActiveUsers)
	}
}
