package http

import (
	"strings"
	"time"

	"claritas/internal/domain"
)

type (
	// TaskRequest struct - HTTP request DTO describing the assessment task
	TaskRequest struct {
		TaskType       string   `json:"taskType" validate:"required,oneof=picture-description sentence-reading" form:"taskType"`
		Patient        string   `json:"patient" validate:"required,max=100" form:"patient"`
		Caregiver      string   `json:"caregiver" validate:"max=200" form:"caregiver"`
		CaregiverEmail string   `json:"caregiverEmail" validate:"omitempty,email" form:"caregiverEmail"`
		ImageID        string   `json:"imageId" validate:"max=200" form:"imageId"`
		Sentences      []string `json:"sentences" validate:"dive,max=500" form:"sentences"`
	}

	// QuerySessionRequest struct - HTTP query request DTO for the session list
	QuerySessionRequest struct {
		From     *string `json:"from" validate:"omitempty,datetime=2006-01-02" query:"from"`
		To       *string `json:"to" validate:"omitempty,datetime=2006-01-02" query:"to"`
		TaskType *string `json:"task_type" validate:"omitempty,oneof=picture-description sentence-reading" query:"task_type"`
	}

	// ProfileRequest struct - HTTP request DTO for the identity provider's profile
	ProfileRequest struct {
		Email   string `json:"email" validate:"required,email"`
		Name    string `json:"name" validate:"max=200"`
		Picture string `json:"picture" validate:"omitempty,url"`
		Sub     string `json:"sub"`
	}
)

// ToDomain converts the request to the workflow's task context
func (r TaskRequest) ToDomain() domain.TaskContext {
	sentences := r.Sentences
	// a multipart form may carry all sentences in one newline separated field
	if len(sentences) == 1 && strings.Contains(sentences[0], "\n") {
		sentences = strings.Split(sentences[0], "\n")
	}
	return domain.TaskContext{
		TaskType:       domain.TaskType(strings.TrimSpace(r.TaskType)),
		Patient:        strings.TrimSpace(r.Patient),
		Caregiver:      strings.TrimSpace(r.Caregiver),
		CaregiverEmail: strings.TrimSpace(r.CaregiverEmail),
		ImageID:        strings.TrimSpace(r.ImageID),
		Sentences:      sentences,
	}
}

// ToDomain converts the query to a session filter. Dates are whole days in location.
func (r QuerySessionRequest) ToDomain(location *time.Location) (domain.SessionFilter, error) {
	var filter domain.SessionFilter
	if r.From != nil && *r.From != "" {
		from, err := time.ParseInLocation(domain.OnlyDate, *r.From, location)
		if err != nil {
			return filter, err
		}
		from = domain.BeginningOfDay(from, location)
		filter.From = &from
	}
	if r.To != nil && *r.To != "" {
		to, err := time.ParseInLocation(domain.OnlyDate, *r.To, location)
		if err != nil {
			return filter, err
		}
		to = domain.EndOfDay(to, location)
		filter.To = &to
	}
	if r.TaskType != nil && *r.TaskType != "" {
		taskType := domain.TaskType(*r.TaskType)
		filter.TaskType = &taskType
	}
	return filter, nil
}

// ToDomain converts the request to a caregiver profile
func (r ProfileRequest) ToDomain() domain.CaregiverProfile {
	return domain.CaregiverProfile{
		Email:   r.Email,
		Name:    r.Name,
		Picture: r.Picture,
		Sub:     r.Sub,
	}
}
