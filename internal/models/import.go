package models

// ImportReport summarizes one bulk question import. Parsing and storing
// both follow a partial-success policy, so the report carries per-question
// rejections next to the ids that were created.
type ImportReport struct {
	TotalQuestions int               `json:"total_questions"`
	CreatedCount   int               `json:"created_count"`
	RejectedCount  int               `json:"rejected_count"`
	CreatedIDs     []uint            `json:"created_ids"`
	Rejections     []ImportRejection `json:"rejections,omitempty"`
}

// ImportRejection attributes one dropped question to a stage and reason.
type ImportRejection struct {
	Ordinal int    `json:"ordinal"`
	Stem    string `json:"stem,omitempty"`
	Stage   string `json:"stage"` // "parse" or "store"
	Reason  string `json:"reason"`
}
