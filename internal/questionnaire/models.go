package questionnaire

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionnaireID is the fixed _id of the singleton aggregate document.
// Every upsert targets this key so the store can never hold two aggregates.
const QuestionnaireID = "questionnaire"

// Questionnaire is the single aggregate document: questionnaire-wide fields
// plus the embedded users and links arrays.
type Questionnaire struct {
	ID       string `bson:"_id" json:"id"`
	Status   bool   `bson:"status" json:"status"`
	Image    string `bson:"image,omitempty" json:"image,omitempty"`
	Question string `bson:"question,omitempty" json:"question,omitempty"`
	Links    []Link `bson:"links" json:"links"`
	Users    []User `bson:"users" json:"users"`
}

// Link is an embedded {title, value} pair appended via the API.
type Link struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title string             `bson:"title" json:"title"`
	Value string             `bson:"value" json:"value"`
}

// User is an embedded sub-document of the aggregate. The password field holds
// a bcrypt hash and is never serialized to JSON.
type User struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password" json:"-"`
	Rates          []float64          `bson:"rates" json:"rates"`
	LastAverage    float64            `bson:"lastAverage" json:"lastAverage"`
	CurrentAverage float64            `bson:"currentAverage" json:"currentAverage"`
	Image          *string            `bson:"image" json:"image"`
	Answer         string             `bson:"answer,omitempty" json:"answer,omitempty"`
}
