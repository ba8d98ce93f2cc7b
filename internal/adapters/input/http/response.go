package http

import (
	"net/http"

	"claritas/internal/domain"
)

var (
	// Success response
	Success = Status{Code: http.StatusOK, Message: []string{"Success"}}
	// BadRequest response
	BadRequest = Status{Code: http.StatusBadRequest, Message: []string{"Sorry, Not responding because of incorrect syntax"}}
	// NotFound response
	NotFound = Status{Code: http.StatusNotFound, Message: []string{"Sorry, Data not found"}}
	// ConFlict response
	ConFlict = Status{Code: http.StatusConflict, Message: []string{"Sorry, Recorder is busy"}}
	// UnprocessableEntity response
	UnprocessableEntity = Status{Code: http.StatusUnprocessableEntity, Message: []string{"Sorry, Recording is too short"}}
	// InternalServerError response
	InternalServerError = Status{Code: http.StatusInternalServerError, Message: []string{"Internal Server Error"}}
	// BadGateway response
	BadGateway = Status{Code: http.StatusBadGateway, Message: []string{"Sorry, Upstream service failed"}}
)

// ResponseBody struct - Generic HTTP response wrapper
type ResponseBody struct {
	Status Status      `json:"status,omitempty"`
	Data   interface{} `json:"data,omitempty"`

	TotalItem *int64 `json:"total_item,omitempty"`
}

// Status struct
type Status struct {
	Code    int      `json:"code,omitempty"`
	Message []string `json:"message,omitempty"`
}

type (
	// CaptureResponse struct - HTTP response DTO for capture operations
	CaptureResponse struct {
		Capture domain.CaptureSnapshot `json:"capture"`
		Session *domain.Session        `json:"session,omitempty"`
	}

	// ProfileResponse struct - HTTP response DTO for the caregiver profile
	ProfileResponse struct {
		SignedIn bool                     `json:"signed_in"`
		Profile  *domain.CaregiverProfile `json:"profile,omitempty"`
	}
)
