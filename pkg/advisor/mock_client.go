package advisor

import (
	"context"
	"fmt"
	"time"

	"garden/pkg/calendar"
)

type mockClient struct{ now func() time.Time }

// NewMock returns a deterministic planner used when no model is configured.
// Dates are offsets from now.
func NewMock(now func() time.Time) Client {
	if now == nil {
		now = time.Now
	}
	return &mockClient{now: now}
}

func (m *mockClient) Name() string { return "mock" }

func (m *mockClient) PlanCrop(_ context.Context, r Request) Result {
	start := calendar.Midnight(m.now())
	day := func(n int) string { return calendar.FormatDate(start.AddDate(0, 0, n)) }

	res := Result{
		Schedule: []Task{
			{Date: day(0), Task: "土づくり", Note: "苦土石灰と堆肥をすき込む"},
			{Date: day(14), Task: r.Crop + "の植え付け"},
			{Date: day(35), Task: "追肥・土寄せ"},
			{Date: day(90), Task: "収穫開始の目安", Note: r.Region + "の気候に合わせて前後する"},
		},
		Tips: []string{"水やりは朝に行う"},
	}
	if r.RotationYears != nil && *r.RotationYears > 0 {
		res.Tips = append(res.Tips, fmt.Sprintf("同じ科の作物を%d年は同じ畝に植えない", *r.RotationYears))
	}
	if r.BedWidthCm != nil && *r.BedWidthCm < 60 {
		res.Tips = append(res.Tips, "畝幅が狭いので1条植えにする")
	}
	return res
}

func (m *mockClient) Close() error { return nil }
