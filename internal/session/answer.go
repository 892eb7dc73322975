package session

import (
	"sort"

	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
)

type AnswerKind string

const (
	AnswerSingle AnswerKind = "single"
	AnswerMulti  AnswerKind = "multi"
	AnswerText   AnswerKind = "text"
)

// AnswerValue is a tagged union of the shapes a candidate may submit:
// one option label, a set of labels, or free text. The tag is validated
// against the question type at SetAnswer time, never coerced.
type AnswerValue struct {
	Kind   AnswerKind `json:"kind"`
	Label  string     `json:"label,omitempty"`
	Labels []string   `json:"labels,omitempty"`
	Text   string     `json:"text,omitempty"`
}

func SingleLabel(label string) AnswerValue {
	return AnswerValue{Kind: AnswerSingle, Label: label}
}

func LabelSet(labels ...string) AnswerValue {
	return AnswerValue{Kind: AnswerMulti, Labels: labels}
}

func FreeText(text string) AnswerValue {
	return AnswerValue{Kind: AnswerText, Text: text}
}

// IsEmpty reports whether the value counts as unanswered for progress
// reporting: no chosen label, an empty set, or an empty string.
func (v AnswerValue) IsEmpty() bool {
	switch v.Kind {
	case AnswerSingle:
		return v.Label == ""
	case AnswerMulti:
		return len(v.Labels) == 0
	case AnswerText:
		return v.Text == ""
	default:
		return true
	}
}

// matchesType reports whether the value's shape fits the question type.
func (v AnswerValue) matchesType(t models.QuestionType) bool {
	switch t {
	case models.SingleChoice:
		return v.Kind == AnswerSingle
	case models.MultiSelect:
		return v.Kind == AnswerMulti
	case models.FreeText:
		return v.Kind == AnswerText
	default:
		return false
	}
}

// equalLabelSets compares two label sets: equal cardinality and mutual
// subsets, order-independent. No partial credit.
func equalLabelSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
