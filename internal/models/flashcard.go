package models

// Flashcard is a persisted question/answer pair. IDs are unique within the
// collection.
type Flashcard struct {
	ID       int64  `json:"id" yaml:"id"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// CardDraft is a flashcard that has not been assigned an id yet, as produced
// by the extractors and shown in the generation preview.
type CardDraft struct {
	Question string `json:"question" yaml:"question" validate:"required"`
	Answer   string `json:"answer" yaml:"answer" validate:"required"`
}

// WithID materializes the draft into a Flashcard.
func (d CardDraft) WithID(id int64) Flashcard {
	return Flashcard{ID: id, Question: d.Question, Answer: d.Answer}
}
