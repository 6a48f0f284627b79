package sanitizer

import (
	"strings"
	"unicode"

	"slotbook/pkg/model"
)

// Strategy is one normalization step.
type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, step := range p {
		s = step(s)
	}
	return s
}

var (
	namePipeline  = Pipeline{StripControl, CollapseSpace}
	emailPipeline = Pipeline{StripControl, RemoveSpace, strings.ToLower}
	phonePipeline = Pipeline{StripControl, CollapseSpace}
)

// StripControl drops control and format characters (zero-width spaces, BOMs)
// while keeping ordinary whitespace for CollapseSpace to handle.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return r
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

// CollapseSpace trims s and folds each whitespace run into a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func RemoveSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func NormalizeName(name string) string {
	return namePipeline.Apply(name)
}

func NormalizeEmail(email string) string {
	return emailPipeline.Apply(email)
}

// NormalizePhone keeps the number as typed apart from whitespace and
// invisible characters.
func NormalizePhone(phone string) string {
	return phonePipeline.Apply(phone)
}

// ContactProfile returns a normalized copy of p.
func ContactProfile(p model.ContactProfile) model.ContactProfile {
	return model.ContactProfile{
		Name:  NormalizeName(p.Name),
		Email: NormalizeEmail(p.Email),
		Phone: NormalizePhone(p.Phone),
	}
}
