package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// Option is a single answer choice inside a parsed question.
type Option struct {
	Label string `json:"label"` // single uppercase letter
	Text  string `json:"text"`
}

// QuestionDraft is one question recovered from a raw text dump. Drafts are
// immutable once returned; callers feed them to the question store.
type QuestionDraft struct {
	Content            string   `json:"content"`
	Options            []Option `json:"options"`
	CorrectAnswerLabel string   `json:"correct_answer_label"`
}

// DraftError describes why one question in the dump was rejected. Rejections
// are collected, never thrown: the rest of the batch still parses.
type DraftError struct {
	Ordinal int    `json:"ordinal"` // 1-based position among recognized questions
	Stem    string `json:"stem"`    // leading fragment of the stem, for attribution
	Reason  string `json:"reason"`
}

func (e DraftError) Error() string {
	return fmt.Sprintf("question %d (%q): %s", e.Ordinal, e.Stem, e.Reason)
}

// Result holds the outcome of one Parse call: valid drafts in input order
// plus per-question rejection reasons.
type Result struct {
	Drafts  []QuestionDraft `json:"drafts"`
	Invalid []DraftError    `json:"invalid"`
}

var (
	stemRe   = regexp.MustCompile(`^(\d+)\.\s*(.*)$`)
	optionRe = regexp.MustCompile(`^([A-Z])\.\s*(.*)$`)
	answerRe = regexp.MustCompile(`^Đáp án đúng:\s*([A-Z])\s*(?:\(.*\))?\s*$`)
)

type parseState int

const (
	stateIdle parseState = iota
	stateStem
	stateOptions
)

// Parse converts a loosely formatted question dump into structured drafts.
// It is a pure function: identical input always yields identical output and
// no state survives across calls.
//
// Per non-blank line, matched in order of precedence:
//  1. "<digits>. text" starts a new question
//  2. "<letter>. text" appends an option
//  3. "Đáp án đúng: <letter>" closes the question (trailing parenthetical
//     explanation is discarded)
//  4. anything else continues the previous stem or option (soft line wrap)
func Parse(text string) *Result {
	p := &parser{result: &Result{}}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch p.state {
		case stateIdle:
			p.dispatchIdle(line)
		case stateStem:
			p.dispatchStem(line)
		case stateOptions:
			p.dispatchOptions(line)
		}
	}
	// End of input closes any open question; with no answer line seen it
	// fails validation and is reported, same as an explicit close would.
	p.flush()
	return p.result
}

type parser struct {
	state   parseState
	current *QuestionDraft
	ordinal int
	result  *Result
}

func (p *parser) dispatchIdle(line string) {
	if m := stemRe.FindStringSubmatch(line); m != nil {
		p.open(m[2])
		return
	}
	// Stray text before any stem has nothing to attach to.
}

func (p *parser) dispatchStem(line string) {
	switch {
	case stemRe.MatchString(line):
		m := stemRe.FindStringSubmatch(line)
		p.flush()
		p.open(m[2])
	case optionRe.MatchString(line):
		m := optionRe.FindStringSubmatch(line)
		p.current.Options = append(p.current.Options, Option{Label: m[1], Text: m[2]})
		p.state = stateOptions
	case answerRe.MatchString(line):
		// Answer before any option: the question closes and fails the
		// option-count check instead of swallowing the line as a wrap.
		m := answerRe.FindStringSubmatch(line)
		p.current.CorrectAnswerLabel = m[1]
		p.flush()
	default:
		// Soft wrap: the stem continued onto the next line.
		p.current.Content = joinWrapped(p.current.Content, line)
	}
}

func (p *parser) dispatchOptions(line string) {
	switch {
	case answerRe.MatchString(line):
		m := answerRe.FindStringSubmatch(line)
		p.current.CorrectAnswerLabel = m[1]
		p.flush()
	case stemRe.MatchString(line):
		m := stemRe.FindStringSubmatch(line)
		p.flush()
		p.open(m[2])
	case optionRe.MatchString(line):
		m := optionRe.FindStringSubmatch(line)
		p.current.Options = append(p.current.Options, Option{Label: m[1], Text: m[2]})
	default:
		// Soft wrap: continuation belongs to the most recent option.
		last := &p.current.Options[len(p.current.Options)-1]
		last.Text = joinWrapped(last.Text, line)
	}
}

func (p *parser) open(content string) {
	p.ordinal++
	p.current = &QuestionDraft{Content: content}
	p.state = stateStem
}

// flush validates and emits the in-progress question, if any. Invalid
// questions are dropped with a reason instead of failing the whole parse.
func (p *parser) flush() {
	if p.current == nil {
		p.state = stateIdle
		return
	}
	q := p.current
	p.current = nil
	p.state = stateIdle

	if reason := validate(q); reason != "" {
		p.result.Invalid = append(p.result.Invalid, DraftError{
			Ordinal: p.ordinal,
			Stem:    stemFragment(q.Content),
			Reason:  reason,
		})
		return
	}
	p.result.Drafts = append(p.result.Drafts, *q)
}

func validate(q *QuestionDraft) string {
	if strings.TrimSpace(q.Content) == "" {
		return "empty question content"
	}
	if len(q.Options) < 2 {
		return fmt.Sprintf("needs at least 2 options, got %d", len(q.Options))
	}
	if q.CorrectAnswerLabel == "" {
		return "no correct answer annotation found"
	}
	for _, opt := range q.Options {
		if opt.Label == q.CorrectAnswerLabel {
			return ""
		}
	}
	return fmt.Sprintf("correct answer %q does not match any option label", q.CorrectAnswerLabel)
}

func joinWrapped(head, tail string) string {
	if head == "" {
		return tail
	}
	return head + " " + tail
}

func stemFragment(content string) string {
	const max = 40
	r := []rune(content)
	if len(r) <= max {
		return content
	}
	return string(r[:max]) + "..."
}
