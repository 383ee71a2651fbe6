package domains

import "time"

// QuestionVersion fields are inconsistent across historical records; any of the
// type fields may carry the input type.
type QuestionVersion struct {
	QuestionText string `json:"question_text,omitempty" bson:"questionText,omitempty"`
	Type         string `json:"type,omitempty" bson:"type,omitempty"`
	QuestionType string `json:"question_type,omitempty" bson:"questionType,omitempty"`
	InputType    string `json:"input_type,omitempty" bson:"inputType,omitempty"`
	AnswerType   string `json:"answer_type,omitempty" bson:"answerType,omitempty"`
}

type Question struct {
	ID             string            `json:"id" bson:"_id"`
	OwnerID        string            `json:"owner_id" bson:"ownerId"`
	Versions       []QuestionVersion `json:"versions" bson:"versions"`
	CurrentVersion *int              `json:"current_version,omitempty" bson:"currentVersion,omitempty"`
	Text           string            `json:"text,omitempty" bson:"text,omitempty"`
	Question       string            `json:"question,omitempty" bson:"question,omitempty"`
	Title          string            `json:"title,omitempty" bson:"title,omitempty"`
	CreatedAt      time.Time         `json:"created_at" bson:"createdAt"`
	UpdatedAt      time.Time         `json:"updated_at" bson:"updatedAt"`
}

// Current returns the version addressed by CurrentVersion, falling back to the
// last version when the index is missing or out of range.
func (q Question) Current() (QuestionVersion, bool) {
	if len(q.Versions) == 0 {
		return QuestionVersion{}, false
	}
	if q.CurrentVersion != nil && *q.CurrentVersion >= 0 && *q.CurrentVersion < len(q.Versions) {
		return q.Versions[*q.CurrentVersion], true
	}
	return q.Versions[len(q.Versions)-1], true
}

type QuestionCreate struct {
	Text    string          `json:"text,omitempty"`
	Version QuestionVersion `json:"version"`
}
