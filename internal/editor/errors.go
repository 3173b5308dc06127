package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrInFlight is returned when a regeneration of the same section is already running.
	ErrInFlight = errors.New("regeneration already in progress")
	// ErrUnknownSection is returned when the document has no section with the given title.
	ErrUnknownSection = errors.New("section not found")
	// ErrSuperseded is returned when the document was replaced while the request was running.
	ErrSuperseded = errors.New("document replaced during regeneration")
	// ErrEmptyContent is returned when the generator produced no usable body.
	ErrEmptyContent = errors.New("generator returned empty content")
	// ErrMalformedContent is returned when a generated body leaves a code fence open, which
	// would hide every later section once the document is re-split.
	ErrMalformedContent = errors.New("generator returned a body with an unterminated code fence")
	// ErrNoSections is returned when a generated document has no top-level heading.
	ErrNoSections = errors.New("no sections found")
)

// SectionError reports a failed regeneration of one section. The document is unchanged.
type SectionError struct {
	SectionTitle string `json:"sectionTitle"`
	Message      string `json:"message"`
	Err          error  `json:"-"`
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("failed to regenerate section %q: %s", e.SectionTitle, e.Message)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}

func sectionError(title string, err error) *SectionError {
	return &SectionError{SectionTitle: title, Message: err.Error(), Err: err}
}

// SectionErrors collects the failures of a batch regeneration.
type SectionErrors []*SectionError

func (es SectionErrors) Error() string {
	switch len(es) {
	case 0:
		return "no errors"
	case 1:
		return es[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", es[0].Error(), len(es)-1)
	}
}

// Unwrap lets errors.Is and errors.As look into every collected failure.
func (es SectionErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}
