package repository

import (
	"context"
	"fmt"

	"github.com/davrot/questionnaire-backend/internal/questionnaire"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on a MongoDB collection. The aggregate is
// stored under the fixed _id questionnaire.QuestionnaireID, so concurrent
// upserts against an empty store converge on one document instead of racing
// an empty filter.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func singletonFilter() bson.M {
	return bson.M{"_id": questionnaire.QuestionnaireID}
}

func (r *MongoRepo) Get(ctx context.Context) (*questionnaire.Questionnaire, error) {
	var q questionnaire.Questionnaire
	if err := r.col.FindOne(ctx, singletonFilter()).Decode(&q); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("questionnaire find: %w", err)
	}
	normalize(&q)
	return &q, nil
}

// normalize keeps the embedded arrays non-nil so they serialize as [] rather
// than null, matching documents written before both arrays were upserted.
func normalize(q *questionnaire.Questionnaire) {
	if q.Users == nil {
		q.Users = []questionnaire.User{}
	}
	if q.Links == nil {
		q.Links = []questionnaire.Link{}
	}
}

// upsert applies update to the singleton and returns the post-update document.
func (r *MongoRepo) upsert(ctx context.Context, update bson.M) (*questionnaire.Questionnaire, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var q questionnaire.Questionnaire
	if err := r.col.FindOneAndUpdate(ctx, singletonFilter(), update, opts).Decode(&q); err != nil {
		return nil, fmt.Errorf("questionnaire upsert: %w", err)
	}
	normalize(&q)
	return &q, nil
}

// setField upserts one top-level field. A first write on an empty store must
// also insert the embedded arrays: the array appenders cannot, Mongo rejects
// an update touching the same path in $push and $setOnInsert.
func (r *MongoRepo) setField(ctx context.Context, key string, value interface{}) (*questionnaire.Questionnaire, error) {
	return r.upsert(ctx, bson.M{
		"$set": bson.M{key: value},
		"$setOnInsert": bson.M{
			"users": []questionnaire.User{},
			"links": []questionnaire.Link{},
		},
	})
}

func (r *MongoRepo) AppendUser(ctx context.Context, u questionnaire.User) (*questionnaire.Questionnaire, error) {
	return r.upsert(ctx, bson.M{
		"$push":        bson.M{"users": u},
		"$setOnInsert": bson.M{"links": []questionnaire.Link{}},
	})
}

func (r *MongoRepo) FindUserByEmail(ctx context.Context, email string) (*questionnaire.User, error) {
	q, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	for i := range q.Users {
		if q.Users[i].Email == email {
			return &q.Users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *MongoRepo) FindUserByID(ctx context.Context, id primitive.ObjectID) (*questionnaire.User, error) {
	q, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	for i := range q.Users {
		if q.Users[i].ID == id {
			return &q.Users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *MongoRepo) UpdateUserRating(ctx context.Context, id primitive.ObjectID, prevLen int, rates []float64, lastAvg, currentAvg float64) error {
	// Conditional write: match only while the rates array still has the
	// length observed by the caller's read. A lost race matches nothing.
	filter := bson.M{
		"_id": questionnaire.QuestionnaireID,
		"users": bson.M{"$elemMatch": bson.M{
			"_id":   id,
			"rates": bson.M{"$size": prevLen},
		}},
	}
	update := bson.M{"$set": bson.M{
		"users.$.rates":          rates,
		"users.$.lastAverage":    lastAvg,
		"users.$.currentAverage": currentAvg,
	}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("rating update: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindUserByID(ctx, id); err != nil {
			return err
		}
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *MongoRepo) SetImage(ctx context.Context, path string) (*questionnaire.Questionnaire, error) {
	return r.setField(ctx, "image", path)
}

func (r *MongoRepo) SetQuestion(ctx context.Context, text string) (*questionnaire.Questionnaire, error) {
	return r.setField(ctx, "question", text)
}

func (r *MongoRepo) SetActive(ctx context.Context, flag bool) (*questionnaire.Questionnaire, error) {
	return r.setField(ctx, "status", flag)
}

func (r *MongoRepo) SetUserAnswer(ctx context.Context, id primitive.ObjectID, answer string) (*questionnaire.Questionnaire, error) {
	filter := bson.M{"_id": questionnaire.QuestionnaireID, "users._id": id}
	update := bson.M{"$set": bson.M{"users.$.answer": answer}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var q questionnaire.Questionnaire
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&q); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("answer update: %w", err)
	}
	normalize(&q)
	return &q, nil
}

func (r *MongoRepo) AppendLink(ctx context.Context, l questionnaire.Link) (*questionnaire.Questionnaire, error) {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	return r.upsert(ctx, bson.M{
		"$push":        bson.M{"links": l},
		"$setOnInsert": bson.M{"users": []questionnaire.User{}},
	})
}
