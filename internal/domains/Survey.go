package domains

import "time"

type Survey struct {
	ID           string     `json:"id" bson:"_id"`
	OwnerID      string     `json:"owner_id" bson:"ownerId"`
	Title        string     `json:"title" bson:"title"`
	Description  string     `json:"description,omitempty" bson:"description,omitempty"`
	Published    bool       `json:"published" bson:"published"`
	EndDate      *time.Time `json:"end_date,omitempty" bson:"endDate,omitempty"`
	TagIDs       []string   `json:"tag_ids" bson:"tagIds"`
	QuestionIDs  []string   `json:"question_ids" bson:"questionIds"`
	InviteeCount *int       `json:"invitee_count,omitempty" bson:"inviteeCount,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updatedAt"`
}

// IsActive reports whether the survey is published and has not reached its end date.
func (s Survey) IsActive(now time.Time) bool {
	if !s.Published {
		return false
	}
	return s.EndDate == nil || s.EndDate.After(now)
}

func (s Survey) HasTag(tagID string) bool {
	for _, t := range s.TagIDs {
		if t == tagID {
			return true
		}
	}
	return false
}

type SurveyCreate struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Published    bool       `json:"published"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	TagIDs       []string   `json:"tag_ids"`
	QuestionIDs  []string   `json:"question_ids"`
	InviteeCount *int       `json:"invitee_count,omitempty"`
}

type SurveyUpdate struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Published    *bool      `json:"published,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	TagIDs       []string   `json:"tag_ids,omitempty"`
	QuestionIDs  []string   `json:"question_ids,omitempty"`
	InviteeCount *int       `json:"invitee_count,omitempty"`
}

func (u SurveyUpdate) HasChanges() bool {
	return u.Title != nil || u.Description != nil || u.Published != nil || u.EndDate != nil ||
		u.TagIDs != nil || u.QuestionIDs != nil || u.InviteeCount != nil
}

// Apply returns a copy of s with the update's fields written over it.
func (u SurveyUpdate) Apply(s Survey) Survey {
	if u.Title != nil {
		s.Title = *u.Title
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.Published != nil {
		s.Published = *u.Published
	}
	if u.EndDate != nil {
		end := u.EndDate.UTC()
		s.EndDate = &end
	}
	if u.TagIDs != nil {
		s.TagIDs = u.TagIDs
	}
	if u.QuestionIDs != nil {
		s.QuestionIDs = u.QuestionIDs
	}
	if u.InviteeCount != nil {
		s.InviteeCount = u.InviteeCount
	}
	return s
}
