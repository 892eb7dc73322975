package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedDump = `1. What does a primary key guarantee?
A. Uniqueness of each row
B. Faster inserts
C. Automatic indexing of all columns
Đáp án đúng: A

2. Which HTTP method is idempotent?
A. POST
B. PUT
C. PATCH
Đáp án đúng: B (PUT replaces the full resource)
`

func TestParse_WellFormedDump(t *testing.T) {
	result := Parse(wellFormedDump)

	require.Len(t, result.Drafts, 2)
	assert.Empty(t, result.Invalid)

	first := result.Drafts[0]
	assert.Equal(t, "What does a primary key guarantee?", first.Content)
	require.Len(t, first.Options, 3)
	assert.Equal(t, "A", first.Options[0].Label)
	assert.Equal(t, "Uniqueness of each row", first.Options[0].Text)
	assert.Equal(t, "A", first.CorrectAnswerLabel)

	// The parenthetical explanation on the answer line is discarded.
	second := result.Drafts[1]
	assert.Equal(t, "B", second.CorrectAnswerLabel)
}

func TestParse_IsPure(t *testing.T) {
	first := Parse(wellFormedDump)
	second := Parse(wellFormedDump)

	assert.Equal(t, first, second)
}

func TestParse_PartialSuccess(t *testing.T) {
	// Three well-formed questions and one with no answer annotation.
	text := `1. Question one?
A. Yes
B. No
Đáp án đúng: A
2. Question two, missing its answer line?
A. Yes
B. No
3. Question three?
A. Yes
B. No
Đáp án đúng: B
4. Question four?
A. Yes
B. No
Đáp án đúng: A
`
	result := Parse(text)

	assert.Len(t, result.Drafts, 3)
	require.Len(t, result.Invalid, 1)
	assert.Equal(t, 2, result.Invalid[0].Ordinal)
	assert.Contains(t, result.Invalid[0].Reason, "no correct answer annotation")
}

func TestParse_SoftWrapStem(t *testing.T) {
	text := `1. A stem that was split
across two lines by the source document
A. First
B. Second
Đáp án đúng: B
`
	result := Parse(text)

	require.Len(t, result.Drafts, 1)
	assert.Equal(t,
		"A stem that was split across two lines by the source document",
		result.Drafts[0].Content)
}

func TestParse_SoftWrapOption(t *testing.T) {
	text := `1. Pick the long option
A. A short option
B. An option that keeps
going on the next line
Đáp án đúng: B
`
	result := Parse(text)

	require.Len(t, result.Drafts, 1)
	require.Len(t, result.Drafts[0].Options, 2)
	assert.Equal(t, "An option that keeps going on the next line", result.Drafts[0].Options[1].Text)
}

func TestParse_ValidationReasons(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason string
	}{
		{
			name: "single option",
			text: `1. Only one choice offered
A. The lonely option
Đáp án đúng: A
`,
			reason: "needs at least 2 options",
		},
		{
			name: "answer label not among options",
			text: `1. Label mismatch
A. First
B. Second
Đáp án đúng: D
`,
			reason: "does not match any option label",
		},
		{
			name: "open question at end of input",
			text: `1. Trailing question with options but no close
A. First
B. Second
`,
			reason: "no correct answer annotation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.text)

			assert.Empty(t, result.Drafts)
			require.Len(t, result.Invalid, 1)
			assert.Contains(t, result.Invalid[0].Reason, tt.reason)
		})
	}
}

func TestParse_NumberingIsOnlyADelimiter(t *testing.T) {
	// Duplicate and non-sequential stem numbers are accepted.
	text := `7. First question?
A. Yes
B. No
Đáp án đúng: A
7. Second question, same number?
A. Yes
B. No
Đáp án đúng: B
2. Third, numbered backwards?
A. Yes
B. No
Đáp án đúng: A
`
	result := Parse(text)

	assert.Len(t, result.Drafts, 3)
	assert.Empty(t, result.Invalid)
}

func TestParse_BlankAndStrayLines(t *testing.T) {
	// Blank lines are skipped; text before the first stem has nothing to
	// attach to and is ignored.
	text := `Exported from the question tool

1. Real question?

A. Yes

B. No
Đáp án đúng: B
`
	result := Parse(text)

	require.Len(t, result.Drafts, 1)
	assert.Equal(t, "Real question?", result.Drafts[0].Content)
	assert.Len(t, result.Drafts[0].Options, 2)
}

func TestParse_EmptyInput(t *testing.T) {
	result := Parse("")

	assert.Empty(t, result.Drafts)
	assert.Empty(t, result.Invalid)
}
