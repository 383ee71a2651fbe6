package domains

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (a *Answers) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t != bsontype.Array {
		*a = Answers{}
		return nil
	}
	values, err := bson.Raw(data).Values()
	if err != nil {
		*a = Answers{}
		return nil
	}
	out := make(Answers, 0, len(values))
	for _, value := range values {
		if value.Type != bsontype.EmbeddedDocument {
			continue
		}
		var answer Answer
		if err := answer.UnmarshalBSON(value.Value); err != nil {
			continue
		}
		out = append(out, answer)
	}
	*a = out
	return nil
}

func (a *Answer) UnmarshalBSON(data []byte) error {
	var doc struct {
		QuestionID string   `bson:"questionId"`
		Value      any      `bson:"answer"`
		SectionID  *string  `bson:"sectionId,omitempty"`
		TimeSpent  *float64 `bson:"timeSpent,omitempty"`
	}
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	a.QuestionID = doc.QuestionID
	a.Value = plainValue(doc.Value)
	a.SectionID = doc.SectionID
	a.TimeSpent = doc.TimeSpent
	return nil
}

// plainValue turns driver container types into the shapes encoding/json
// produces, so answers read the same regardless of the backing store.
func plainValue(v any) any {
	switch t := v.(type) {
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case primitive.A:
		out := make([]any, len(t))
		for i := range t {
			out[i] = plainValue(t[i])
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plainValue(e.Value)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plainValue(e)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	}
	return v
}
