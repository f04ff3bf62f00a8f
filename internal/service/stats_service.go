package service

import (
	"quizgen_backend/internal/repository"
	"sort"
)

const mostActiveUsersLimit = 10

type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

type Stats struct {
	TotalQuestions    int64                        `json:"totalQuestions"`
	QuestionsByLevel  []repository.DifficultyCount `json:"questionsByDifficulty"`
	QuestionsByTag    []TagCount                   `json:"questionsByTag"`
	TotalResults      int64                        `json:"totalResults"`
	AverageScore      float64                      `json:"averageScore"`
	MinScore          int                          `json:"minScore"`
	ResultsAtMinScore int64                        `json:"resultsAtOrAboveMinScore"`
	MostActiveUsers   []repository.UserActivity    `json:"mostActiveUsers"`
}

type StatsService struct {
	QuestionRepo *repository.QuestionRepository
	ResultRepo   *repository.QuizResultRepository
}

func NewStatsService(questionRepo *repository.QuestionRepository, resultRepo *repository.QuizResultRepository) *StatsService {
	return &StatsService{QuestionRepo: questionRepo, ResultRepo: resultRepo}
}

func (s *StatsService) Collect(minScore int) (*Stats, error) {
	st := &Stats{MinScore: minScore}
	var err error

	if st.TotalQuestions, err = s.QuestionRepo.Count(); err != nil {
		return nil, err
	}
	if st.QuestionsByLevel, err = s.QuestionRepo.CountByDifficulty(); err != nil {
		return nil, err
	}
	if st.QuestionsByTag, err = s.tagCounts(); err != nil {
		return nil, err
	}
	if st.TotalResults, err = s.ResultRepo.Count(); err != nil {
		return nil, err
	}
	if st.AverageScore, err = s.ResultRepo.AverageScore(); err != nil {
		return nil, err
	}
	if st.ResultsAtMinScore, err = s.ResultRepo.CountByMinScore(minScore); err != nil {
		return nil, err
	}
	if st.MostActiveUsers, err = s.ResultRepo.MostActiveUsers(mostActiveUsersLimit); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *StatsService) tagCounts() ([]TagCount, error) {
	questions, err := s.QuestionRepo.FindAll()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, q := range questions {
		for _, t := range q.Tags {
			counts[t]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}
