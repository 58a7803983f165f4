// Package advisor asks a language model for a cultivation plan. Every
// failure, including malformed model output, comes back as a Result with
// Error set rather than as a Go error.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"garden/pkg/calendar"
)

// FailureMessage is the user-facing text of a failed plan.
const FailureMessage = "計画の取得に失敗しました。AIの応答が不正な形式である可能性があります。"

type Request struct {
	Crop          string   `json:"crop" validate:"required"`
	Region        string   `json:"region" validate:"required"`
	Soil          string   `json:"soil,omitempty"`
	BedWidthCm    *float64 `json:"bedWidthCm,omitempty" validate:"omitempty,gt=0"`
	RotationYears *int     `json:"rotationYears,omitempty" validate:"omitempty,gte=0"`
}

type Task struct {
	Date string `json:"date"`
	Task string `json:"task"`
	Note string `json:"note,omitempty"`
}

type Result struct {
	Schedule []Task   `json:"schedule,omitempty"`
	Tips     []string `json:"tips,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func (r Result) Failed() bool { return r.Error != "" }

func failed() Result { return Result{Error: FailureMessage} }

type Client interface {
	Name() string
	PlanCrop(ctx context.Context, req Request) Result
	Close() error
}

// ParseResult decodes model output of the form
// {"schedule":[{"date","task","note"}],"tips":[...]}. Markdown code fences
// around the JSON are tolerated.
func ParseResult(text string) (Result, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, errors.New("empty response")
	}

	var raw struct {
		Schedule *[]Task  `json:"schedule"`
		Tips     []string `json:"tips"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Result{}, fmt.Errorf("decode plan: %w", err)
	}
	if raw.Schedule == nil {
		return Result{}, errors.New("plan has no schedule")
	}
	for i, t := range *raw.Schedule {
		if strings.TrimSpace(t.Task) == "" {
			return Result{}, fmt.Errorf("schedule[%d]: task is empty", i)
		}
		if _, err := calendar.ParseDate(t.Date); err != nil {
			return Result{}, fmt.Errorf("schedule[%d]: date %q is not YYYY-MM-DD", i, t.Date)
		}
	}
	return Result{Schedule: *raw.Schedule, Tips: raw.Tips}, nil
}

// Prompt renders the planning request for the model.
func Prompt(r Request) string {
	unknown := "不明"
	soil := unknown
	if s := strings.TrimSpace(r.Soil); s != "" {
		soil = s
	}
	width := unknown
	if r.BedWidthCm != nil {
		width = fmt.Sprintf("%g", *r.BedWidthCm)
	}
	rotation := unknown
	if r.RotationYears != nil {
		rotation = fmt.Sprintf("%d", *r.RotationYears)
	}
	return fmt.Sprintf(`あなたは家庭菜園の栽培アドバイザーです。以下の条件で栽培計画を提案してください。
- 地域: %s
- 作物: %s
- 土壌条件: %s
- 畝幅(cm): %s
- 連作障害: %s 年
出力は必ずJSON形式で、{ "schedule": [{ "date": "YYYY-MM-DD", "task": "作業内容", "note": "補足" }], "tips": ["アドバイス1", "アドバイス2"] } の構造を持つこと。`,
		r.Region, r.Crop, soil, width, rotation)
}
