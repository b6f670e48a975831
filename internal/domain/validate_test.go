package domain

import (
	"errors"
	"testing"
	"time"
)

func TestRegisterInputValidate(t *testing.T) {
	valid := RegisterInput{Name: "Netflix", Category: "Streaming", Website: "https://netflix.com"}

	tests := []struct {
		name      string
		mutate    func(in *RegisterInput)
		wantField string
	}{
		{"valid", func(in *RegisterInput) {}, ""},
		{"missing name", func(in *RegisterInput) { in.Name = "" }, "name"},
		{"blank name", func(in *RegisterInput) { in.Name = "  \t " }, "name"},
		{"missing category", func(in *RegisterInput) { in.Category = "" }, "category"},
		{"missing website", func(in *RegisterInput) { in.Website = "" }, "website"},
		{"relative website", func(in *RegisterInput) { in.Website = "netflix.com" }, "website"},
		{"ftp website", func(in *RegisterInput) { in.Website = "ftp://netflix.com" }, "website"},
		{"no host", func(in *RegisterInput) { in.Website = "https://" }, "website"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			in.Normalize()
			err := in.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestSubmitInputValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        SubmitInput
		wantField string
	}{
		{"valid", SubmitInput{ServiceID: "abc", ProblemType: ProblemSlow}, ""},
		{"missing service", SubmitInput{ProblemType: ProblemOutage}, "serviceId"},
		{"unknown problem", SubmitInput{ServiceID: "abc", ProblemType: "meh"}, "problemType"},
		{"padded problem", SubmitInput{ServiceID: " abc ", ProblemType: " connection "}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.Normalize()
			err := in.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.Field != tt.wantField {
				t.Errorf("Validate() = %v, want validation error on %q", err, tt.wantField)
			}
		})
	}
}

func TestErrorMatching(t *testing.T) {
	if !errors.Is(ErrServiceExists, ErrConflict) {
		t.Error("ErrServiceExists should match ErrConflict")
	}
	storageErr := &StorageError{Op: "submit report", Err: errors.New("disk full")}
	if !errors.Is(storageErr, ErrStorage) {
		t.Error("StorageError should match ErrStorage")
	}
	if errors.Is(storageErr, ErrConflict) {
		t.Error("StorageError should not match ErrConflict")
	}
}

func TestSortServices(t *testing.T) {
	services := []*Service{
		{Name: "Zeta", ReportsCount: 5},
		{Name: "Alpha", ReportsCount: 50},
		{Name: "Beta", ReportsCount: 5},
	}
	SortServices(services)

	want := []string{"Alpha", "Beta", "Zeta"}
	for i, name := range want {
		if services[i].Name != name {
			t.Errorf("position %d = %s, want %s", i, services[i].Name, name)
		}
	}
}

func TestReportFilterMatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := ReportFilter{ServiceID: "svc", Since: now.Add(-24 * time.Hour), Until: now}

	tests := []struct {
		name string
		r    Report
		want bool
	}{
		{"inside window", Report{ServiceID: "svc", Timestamp: now.Add(-time.Hour)}, true},
		{"lower bound inclusive", Report{ServiceID: "svc", Timestamp: now.Add(-24 * time.Hour)}, true},
		{"too old", Report{ServiceID: "svc", Timestamp: now.Add(-25 * time.Hour)}, false},
		{"future", Report{ServiceID: "svc", Timestamp: now.Add(time.Minute)}, false},
		{"other service", Report{ServiceID: "other", Timestamp: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Match(&tt.r); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}
