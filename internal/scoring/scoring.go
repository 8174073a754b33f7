// Package scoring 测验判分，纯函数，不做任何存储访问。
//
// 答案按位置对应题目：answers[i] 是第 i 题所选选项下标，nil 表示未作答。
package scoring

import (
	"errors"
	"fmt"
	"math"
	"skillnest_backend/internal/model"
	"strings"
)

var (
	ErrNoCorrectOption  = errors.New("no option is marked correct")
	ErrMultipleCorrect  = errors.New("more than one option is marked correct")
	ErrNotGradable      = errors.New("question cannot be graded automatically")
	ErrNoQuestions      = errors.New("quiz has no questions")
	ErrInvalidQuestion  = errors.New("invalid question")
	ErrAnswerCount      = errors.New("answer count does not match question count")
	ErrAnswerOutOfRange = errors.New("answer is not a valid option index")
)

// CorrectIndex 返回唯一正确选项的下标，零个或多个正确选项都视为错误
func CorrectIndex(q model.Question) (int, error) {
	if !q.Gradable() {
		return -1, ErrNotGradable
	}
	idx := -1
	for i, opt := range q.Options {
		if !opt.Correct {
			continue
		}
		if idx >= 0 {
			return -1, ErrMultipleCorrect
		}
		idx = i
	}
	if idx < 0 {
		return -1, ErrNoCorrectOption
	}
	return idx, nil
}

// ValidateQuestions 创建/更新测验时校验题库
func ValidateQuestions(questions []model.Question) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

func validateQuestion(q model.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidQuestion)
	}
	if q.Penalty != nil && *q.Penalty < 0 {
		return fmt.Errorf("%w: negative penalty", ErrInvalidQuestion)
	}

	switch q.Kind() {
	case model.QuestionMCQ:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: multiple choice needs at least two options", ErrInvalidQuestion)
		}
	case model.QuestionTrueFalse:
		if len(q.Options) != 2 {
			return fmt.Errorf("%w: true/false needs exactly two options", ErrInvalidQuestion)
		}
	case model.QuestionShortAnswer:
		if len(q.Options) != 0 {
			return fmt.Errorf("%w: short answer takes no options", ErrInvalidQuestion)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, q.Type)
	}

	for j, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" {
			return fmt.Errorf("%w: option %d has empty text", ErrInvalidQuestion, j)
		}
	}
	_, err := CorrectIndex(q)
	return err
}

// ValidateAnswers 答案数必须与题目数一致，已作答的下标必须落在选项范围内
func ValidateAnswers(questions []model.Question, answers []*int) error {
	if len(answers) != len(questions) {
		return fmt.Errorf("%w: got %d, want %d", ErrAnswerCount, len(answers), len(questions))
	}
	for i, a := range answers {
		if a == nil {
			continue
		}
		if *a < 0 || *a >= len(questions[i].Options) {
			return fmt.Errorf("%w: question %d, answer %d", ErrAnswerOutOfRange, i, *a)
		}
	}
	return nil
}

// RawResult 服务端记录的原始得分：答对题数 / 题目总数
type RawResult struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// WeightedResult 百分制得分，答错扣分，最低为 0
type WeightedResult struct {
	Score     int     `json:"score"`
	Positive  float64 `json:"positive"`
	Penalty   float64 `json:"penalty"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Skipped   int     `json:"skipped"`
	Gradable  int     `json:"gradable"`
	Passed    bool    `json:"passed"`
}

type Report struct {
	Raw      RawResult      `json:"raw"`
	Weighted WeightedResult `json:"weighted"`
}

func answerAt(answers []*int, i int) *int {
	if i < len(answers) {
		return answers[i]
	}
	return nil
}

// Grade 一次遍历同时算出原始得分与百分制得分
func Grade(questions []model.Question, answers []*int, policy Policy) (Report, error) {
	var (
		raw = RawResult{Total: len(questions)}
		w   WeightedResult
	)

	for i, q := range questions {
		if !q.Gradable() {
			if !policy.ExcludeFreeText {
				// 计入分母，但无法自动判分
				w.Gradable++
				w.Skipped++
			}
			continue
		}
		w.Gradable++

		correctIdx, err := CorrectIndex(q)
		if err != nil {
			return Report{}, fmt.Errorf("question %d: %w", i, err)
		}

		ans := answerAt(answers, i)
		switch {
		case ans == nil:
			w.Skipped++
		case *ans == correctIdx:
			raw.Score++
			w.Correct++
		default:
			w.Incorrect++
			w.Penalty += penaltyFor(q, policy)
		}
	}

	if w.Gradable > 0 {
		marksPerQuestion := 100 / float64(w.Gradable)
		w.Positive = float64(w.Correct) * marksPerQuestion
		w.Score = clampPercent(math.Round(math.Max(0, w.Positive-w.Penalty)))
		w.Passed = w.Score >= policy.PassThreshold
	}

	return Report{Raw: raw, Weighted: w}, nil
}

// RawCount 仅计算答对题数
func RawCount(questions []model.Question, answers []*int) (RawResult, error) {
	r, err := Grade(questions, answers, DefaultPolicy())
	if err != nil {
		return RawResult{}, err
	}
	return r.Raw, nil
}

// Weighted 仅计算百分制得分
func Weighted(questions []model.Question, answers []*int, policy Policy) (WeightedResult, error) {
	r, err := Grade(questions, answers, policy)
	if err != nil {
		return WeightedResult{}, err
	}
	return r.Weighted, nil
}

func penaltyFor(q model.Question, policy Policy) float64 {
	if q.Penalty != nil {
		return *q.Penalty
	}
	return policy.PenaltyPerWrong
}

func clampPercent(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
