package api

import "github.com/satriahrh/arunika/avatar/internal/apierror"

// GenerateRequest is the body of POST /generate
type GenerateRequest struct {
	Message string `json:"message"`
	Prompt  string `json:"prompt,omitempty"`
}

// GenerateResponse is the reply of POST /generate
type GenerateResponse struct {
	Response string `json:"response"`
}

// StatusResponse is returned by the liveness routes
type StatusResponse struct {
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
	Service string `json:"service,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse = apierror.Error
