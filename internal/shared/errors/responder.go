package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper turns a domain error into a problem. ok is false when the mapper does not apply.
type ErrorMapper func(err error) (problem ProblemDetail, ok bool)

// Responder writes problems, consulting its mappers in order. Unmapped errors become an
// opaque 500 and are attached to the gin context for logging.
type Responder struct {
	// BaseURI prefixes relative problem types.
	BaseURI string
	mappers []ErrorMapper
}

func NewResponder(baseURI string, mappers ...ErrorMapper) *Responder {
	return &Responder{BaseURI: baseURI, mappers: mappers}
}

var defaultResponder = NewResponder("")

// Respond writes problem and aborts the handler chain.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	if problem.Message == "" {
		problem.Message = problem.Detail
	}
	if problem.Message == "" {
		problem.Message = problem.Title
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

func (r *Responder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	_ = c.Error(err)
	r.Respond(c, ErrInternal)
}

// Respond writes problem with relative type URIs.
func Respond(c *gin.Context, problem ProblemDetail) {
	defaultResponder.Respond(c, problem)
}

// MapSentinel renders template for errors matching target, with the error text as detail.
func MapSentinel(target error, template ProblemDetail) ErrorMapper {
	return func(err error) (ProblemDetail, bool) {
		if errors.Is(err, target) {
			return template.WithDetail(err.Error()), true
		}
		return ProblemDetail{}, false
	}
}

// MapNotFound renders a 404 whose message names the missing resource, e.g. "Order not found".
func MapNotFound(target error, resource string) ErrorMapper {
	return MapSentinel(target, ErrNotFound.WithMessage(resource+" not found"))
}

// MapConflict renders a 409 whose message is the sentinel's own text, so clients see
// "insufficient stock" rather than the wrapped chain.
func MapConflict(target error) ErrorMapper {
	return MapSentinel(target, ErrConflict.WithMessage(target.Error()))
}

// MapInvalid renders a 422 with a fixed message and the full validation error as detail.
func MapInvalid(target error, message string) ErrorMapper {
	return MapSentinel(target, ErrUnprocessable.WithMessage(message))
}
