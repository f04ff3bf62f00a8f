package repository

import (
	"encoding/json"
	"quizgen_backend/internal/model"
	"sort"
	"strings"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) CreateBatch(questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Create(&questions).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) FindAll() ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Order("id asc").Find(&qs).Error
	return qs, err
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// tagNeedles 带引号的标签字面量。sqlite 保留 json.Marshal 的 \u0026 等转义，
// mysql 与 postgres 的 JSON 列会还原成原字符，两种写法都要匹配
func tagNeedles(tag string) []string {
	raw := "%" + likeEscaper.Replace(`"`+tag+`"`) + "%"
	encoded, err := json.Marshal(tag)
	if err != nil || string(encoded) == `"`+tag+`"` {
		return []string{raw}
	}
	return []string{raw, "%" + likeEscaper.Replace(string(encoded)) + "%"}
}

// FindByTag 标签以 JSON 数组存储，LIKE 只做粗筛，精确匹配在内存中完成
func (r *QuestionRepository) FindByTag(tag string) ([]model.Question, error) {
	col := "tags"
	if r.DB.Dialector.Name() == "postgres" {
		col = "tags::text"
	}

	needles := tagNeedles(tag)
	conds := make([]string, len(needles))
	args := make([]interface{}, len(needles))
	for i, needle := range needles {
		conds[i] = col + " LIKE ? ESCAPE '!'"
		args[i] = needle
	}

	var candidates []model.Question
	err := r.DB.Where("("+strings.Join(conds, " OR ")+")", args...).Order("id asc").Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	qs := make([]model.Question, 0, len(candidates))
	for _, q := range candidates {
		for _, t := range q.Tags {
			if t == tag {
				qs = append(qs, q)
				break
			}
		}
	}
	return qs, nil
}

func (r *QuestionRepository) FindByDifficulty(difficulty string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("LOWER(difficulty) = ?", strings.ToLower(difficulty)).Order("id asc").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) DistinctTags() ([]string, error) {
	var qs []model.Question
	if err := r.DB.Select("tags").Find(&qs).Error; err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	for _, q := range qs {
		for _, t := range q.Tags {
			set[t] = true
		}
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}

func (r *QuestionRepository) Count() (int64, error) {
	var total int64
	err := r.DB.Model(&model.Question{}).Count(&total).Error
	return total, err
}

type DifficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int64  `json:"count"`
}

func (r *QuestionRepository) CountByDifficulty() ([]DifficultyCount, error) {
	var rows []DifficultyCount
	err := r.DB.Model(&model.Question{}).
		Select("UPPER(difficulty) as difficulty, COUNT(*) as count").
		Group("UPPER(difficulty)").
		Order("difficulty asc").
		Scan(&rows).Error
	return rows, err
}

func (r *QuestionRepository) Update(question *model.Question) error {
	return r.DB.Save(question).Error
}

// QuizIDs 引用该题目的测验 ID
func (r *QuestionRepository) QuizIDs(questionID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.QuizQuestion{}).
		Where("question_id = ?", questionID).
		Distinct().
		Order("quiz_id asc").
		Pluck("quiz_id", &ids).Error
	return ids, err
}

// Delete 记录不存在时返回 gorm.ErrRecordNotFound
func (r *QuestionRepository) Delete(id uint) error {
	res := r.DB.Delete(&model.Question{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
