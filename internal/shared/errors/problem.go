// Package errors renders API failures as RFC 7807 problem documents that also carry the
// {message} envelope clients read.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is one problem document. Message is what clients display; when empty the
// responder fills it from Detail, then Title.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Message  string `json:"message"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy carrying detail.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithMessage returns a copy with an explicit envelope message.
func (p ProblemDetail) WithMessage(message string) ProblemDetail {
	p.Message = message
	return p
}

const (
	TypeNotFound      = "/problems/not-found"
	TypeConflict      = "/problems/conflict"
	TypeInternal      = "/problems/internal-error"
	TypeUnauthorized  = "/problems/unauthorized"
	TypeUnprocessable = "/problems/unprocessable-entity"
)

// Templates for the statuses the API returns.
var (
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	// ErrConflict covers state clashes: duplicates, double accept or pay, short stock.
	ErrConflict = ProblemDetail{
		Type:   TypeConflict,
		Title:  "Conflict",
		Status: http.StatusConflict,
	}

	ErrInternal = ProblemDetail{
		Type:    TypeInternal,
		Title:   "Internal Server Error",
		Status:  http.StatusInternalServerError,
		Message: "Something went wrong",
	}

	// ErrUnauthorized is used both for a missing identity and for a denied capability.
	ErrUnauthorized = ProblemDetail{
		Type:    TypeUnauthorized,
		Title:   "Unauthorized",
		Status:  http.StatusUnauthorized,
		Message: "Unauthorized",
	}

	ErrUnprocessable = ProblemDetail{
		Type:   TypeUnprocessable,
		Title:  "Unprocessable Entity",
		Status: http.StatusUnprocessableEntity,
	}
)
