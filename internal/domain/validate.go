package domain

import (
	"net/url"
	"strings"
)

// RegisterInput carries the fields accepted when registering a service.
type RegisterInput struct {
	// ID is optional and only honoured for catalog seeding. When empty a
	// fresh identifier is generated.
	ID          string `json:"-"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

// Normalize trims every field in place.
func (in *RegisterInput) Normalize() {
	in.ID = strings.ToLower(strings.TrimSpace(in.ID))
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.Website = strings.TrimSpace(in.Website)
}

// Validate checks required fields and the website URL.
func (in RegisterInput) Validate() error {
	if in.Name == "" || NormalizeName(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if in.Category == "" {
		return &ValidationError{Field: "category", Reason: "is required"}
	}
	if err := ValidateWebsite(in.Website); err != nil {
		return err
	}
	return nil
}

// ValidateWebsite accepts absolute http(s) URLs with a host.
func ValidateWebsite(raw string) error {
	if raw == "" {
		return &ValidationError{Field: "website", Reason: "is required"}
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return &ValidationError{Field: "website", Reason: "must be a valid URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "website", Reason: "must use http or https"}
	}
	if u.Host == "" {
		return &ValidationError{Field: "website", Reason: "must include a host"}
	}
	return nil
}

// SubmitInput carries the fields accepted when submitting a report.
type SubmitInput struct {
	ServiceID   string      `json:"serviceId"`
	ProblemType ProblemType `json:"problemType"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
}

// Normalize trims every field in place.
func (in *SubmitInput) Normalize() {
	in.ServiceID = strings.TrimSpace(in.ServiceID)
	in.ProblemType = ProblemType(strings.TrimSpace(string(in.ProblemType)))
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
}

// Validate checks the service reference and the problem type.
func (in SubmitInput) Validate() error {
	if in.ServiceID == "" {
		return &ValidationError{Field: "serviceId", Reason: "is required"}
	}
	if !in.ProblemType.IsValid() {
		return &ValidationError{Field: "problemType", Reason: "must be one of connection, slow, outage"}
	}
	return nil
}
