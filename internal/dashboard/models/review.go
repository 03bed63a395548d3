package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	dErrors "cosurvival/pkg/domain-errors"
	pstrings "cosurvival/pkg/platform/strings"
)

// Lens is the viewpoint a review is filed under.
type Lens string

const (
	LensTribe   Lens = "tribe"
	LensTeacher Lens = "teacher"
	LensRecon   Lens = "recon"
)

// MinSummaryLength is the shortest accepted review summary, in characters.
const MinSummaryLength = 10

// ReviewEntry is a submitted review as returned by the backend.
type ReviewEntry struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Lens       Lens      `json:"lens"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"createdAt"`
	Highlights []string  `json:"highlights"`
}

// Clone returns a copy that shares no slices with e.
func (e ReviewEntry) Clone() ReviewEntry {
	e.Highlights = cloneSlice(e.Highlights)
	return e
}

// ReviewInput is the submission contract of the review endpoint.
type ReviewInput struct {
	Author     string   `json:"author" validate:"required"`
	Lens       Lens     `json:"lens" validate:"required,oneof=tribe teacher recon"`
	Summary    string   `json:"summary" validate:"required,min=10"`
	Highlights []string `json:"highlights"`
}

var reviewValidate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims fields and turns highlights into a set preserving order.
func (in *ReviewInput) Normalize() {
	in.Author = strings.TrimSpace(in.Author)
	in.Lens = Lens(strings.ToLower(strings.TrimSpace(string(in.Lens))))
	in.Summary = strings.TrimSpace(in.Summary)
	in.Highlights = pstrings.DedupeAndTrim(in.Highlights)
	if in.Highlights == nil {
		in.Highlights = []string{}
	}
}

// Validate checks the input against the submission contract. Call Normalize first.
func (in *ReviewInput) Validate() error {
	err := reviewValidate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid review")
	}
	return dErrors.New(dErrors.CodeValidation, describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
