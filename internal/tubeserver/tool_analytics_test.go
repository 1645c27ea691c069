package tubeserver

import (
	"testing"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

func TestAggregateByWeekday(t *testing.T) {
	// Aug 2026: the 3rd, 10th and 17th are Mondays, the 4th a Tuesday.
	daily := engine.AnalyticsReport{
		StartDate: "2026-08-01",
		EndDate:   "2026-08-17",
		Columns:   []string{"day", "views", "estimatedMinutesWatched"},
		Rows: []map[string]any{
			{"day": "2026-08-03", "views": float64(100), "estimatedMinutesWatched": float64(400)},
			{"day": "2026-08-10", "views": float64(50), "estimatedMinutesWatched": float64(200)},
			{"day": "2026-08-17", "views": float64(25), "estimatedMinutesWatched": float64(100)},
			{"day": "2026-08-04", "views": float64(10), "estimatedMinutesWatched": float64(30)},
			{"day": "not-a-date", "views": float64(999)},
		},
	}

	out := aggregateByWeekday(daily)

	if out.StartDate != "2026-08-01" || out.EndDate != "2026-08-17" {
		t.Errorf("date range = %s..%s", out.StartDate, out.EndDate)
	}
	if out.TotalRows != 2 {
		t.Fatalf("rows = %d, want 2 weekday buckets", out.TotalRows)
	}

	byDay := make(map[string]map[string]any)
	for _, row := range out.Rows {
		byDay[row["dayOfWeek"].(string)] = row
	}

	mon := byDay["Monday"]
	if mon == nil {
		t.Fatal("no Monday bucket")
	}
	if mon["views"] != float64(175) || mon["estimatedMinutesWatched"] != float64(700) {
		t.Errorf("Monday = %v", mon)
	}
	if mon["daysCounted"] != 3 {
		t.Errorf("Monday daysCounted = %v, want 3", mon["daysCounted"])
	}

	tue := byDay["Tuesday"]
	if tue == nil || tue["views"] != float64(10) {
		t.Errorf("Tuesday = %v", tue)
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{float64(1.5), 1.5},
		{int(7), 7},
		{int64(9), 9},
		{"42", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := toFloat(tt.in); got != tt.want {
			t.Errorf("toFloat(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
