package twelvedata

import (
	"testing"
	"time"

	"github.com/Alias1177/IndexSignal/models"
)

func TestParseDatetime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-06-02 09:30:00", time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)},
		{"2025-06-02", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseDatetime(tt.in)
		if err != nil {
			t.Errorf("parseDatetime(%q) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDatetime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := parseDatetime("02.06.2025"); err == nil {
		t.Error("unknown layout must error")
	}
}

func TestIntervalsCoverAllTimeframes(t *testing.T) {
	for _, tf := range models.AllTimeframes() {
		if _, ok := intervals[tf]; !ok {
			t.Errorf("timeframe %s has no feed interval", tf)
		}
	}
}
