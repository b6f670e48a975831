package domain

import "testing"

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		count   int64
		want    Status
	}{
		{"zero keeps operational", StatusOperational, 0, StatusOperational},
		{"at degraded threshold keeps current", StatusOperational, 20, StatusOperational},
		{"just above degraded threshold", StatusOperational, 21, StatusDegraded},
		{"at down threshold is degraded", StatusOperational, 100, StatusDegraded},
		{"just above down threshold", StatusDegraded, 101, StatusDown},
		{"far above down threshold", StatusOperational, 5000, StatusDown},
		{"low count never demotes down", StatusDown, 3, StatusDown},
		{"low count never demotes degraded", StatusDegraded, 20, StatusDegraded},
		{"degraded range demotes down to degraded", StatusDown, 50, StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStatus(tt.current, tt.count); got != tt.want {
				t.Errorf("NextStatus(%q, %d) = %q, want %q", tt.current, tt.count, got, tt.want)
			}
		})
	}
}

func TestRecordReport(t *testing.T) {
	svc := &Service{Status: StatusOperational, ReportsCount: 20, Trend: TrendDown}

	prev := RecordReport(svc)
	if prev != StatusOperational {
		t.Errorf("previous status = %q, want %q", prev, StatusOperational)
	}
	if svc.ReportsCount != 21 {
		t.Errorf("ReportsCount = %d, want 21", svc.ReportsCount)
	}
	if svc.Status != StatusDegraded {
		t.Errorf("Status = %q, want %q", svc.Status, StatusDegraded)
	}
	if svc.Trend != TrendUp {
		t.Errorf("Trend = %q, want %q", svc.Trend, TrendUp)
	}

	for i := 0; i < 80; i++ {
		RecordReport(svc)
	}
	if svc.ReportsCount != 101 || svc.Status != StatusDown {
		t.Errorf("after 80 more reports got count=%d status=%q, want 101 down", svc.ReportsCount, svc.Status)
	}
}

func TestRecordReportMonotonic(t *testing.T) {
	svc := &Service{Status: StatusOperational}
	last := svc.ReportsCount
	for i := 0; i < 250; i++ {
		RecordReport(svc)
		if svc.ReportsCount <= last {
			t.Fatalf("ReportsCount went from %d to %d", last, svc.ReportsCount)
		}
		last = svc.ReportsCount
		if svc.ReportsCount > DownThreshold && svc.Status != StatusDown {
			t.Fatalf("count %d should be down, got %q", svc.ReportsCount, svc.Status)
		}
		if svc.ReportsCount > DegradedThreshold && svc.ReportsCount <= DownThreshold && svc.Status != StatusDegraded {
			t.Fatalf("count %d should be degraded, got %q", svc.ReportsCount, svc.Status)
		}
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusOperational, StatusDegraded, StatusDown} {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Status("maintenance").IsValid() {
		t.Error("unknown status should be invalid")
	}
	if !TrendUp.IsValid() || !TrendDown.IsValid() || Trend("flat").IsValid() {
		t.Error("trend validity mismatch")
	}
}
