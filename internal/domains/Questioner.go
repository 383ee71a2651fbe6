package domains

import "time"

const (
	RoleAdmin      = "ADMIN"
	RoleQuestioner = "QUESTIONER"
)

type Questioner struct {
	Id        string    `json:"id" bson:"_id"`
	FullName  string    `json:"full_name" bson:"fullName"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"password,omitempty" bson:"passhash"`
	Role      string    `json:"role" bson:"role"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

func (q Questioner) IsAdmin() bool {
	return q.Role == RoleAdmin
}
