package tracker

import (
	"strconv"
	"strings"

	"habits/internal/domain"
)

// Form is the new-habit form. Setters clamp input the way the form's
// maxLength attributes do; nothing else is validated client-side beyond a
// non-blank name.
type Form struct {
	Name            string
	Description     string
	TargetFrequency int
}

// NewForm returns the empty form with the default weekly target.
func NewForm() Form {
	return Form{TargetFrequency: domain.DefaultTarget}
}

// SetName stores name clamped to MaxNameLength runes.
func (f *Form) SetName(name string) {
	f.Name = clampRunes(name, domain.MaxNameLength)
}

// SetDescription stores d clamped to MaxDescriptionLength runes.
func (f *Form) SetDescription(d string) {
	f.Description = clampRunes(d, domain.MaxDescriptionLength)
}

// SetTarget parses s as an integer; anything unparseable, zero or negative
// falls back to the default target.
func (f *Form) SetTarget(s string) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		n = domain.DefaultTarget
	}
	f.TargetFrequency = n
}

// Input converts the form to the create-habit request body.
func (f Form) Input() domain.HabitInput {
	return domain.HabitInput{
		Name:            f.Name,
		Description:     f.Description,
		TargetFrequency: f.TargetFrequency,
	}
}

func clampRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
