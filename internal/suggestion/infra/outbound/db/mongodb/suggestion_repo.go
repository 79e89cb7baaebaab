package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	infraMongo "github.com/davicafu/tasksense/internal/infra/db/mongodb"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	"github.com/davicafu/tasksense/internal/suggestion/domain"
)

const (
	collectionName = "suggestions"
	sequenceName   = "suggestions"
)

// SuggestionRepoMongoDB implementa SuggestionRepository para MongoDB.
type SuggestionRepoMongoDB struct {
	coll *mongo.Collection
	seq  *infraMongo.Sequence
}

var _ domain.SuggestionRepository = (*SuggestionRepoMongoDB)(nil)

// NewSuggestionRepoMongoDB crea el índice por dueño si no existe.
func NewSuggestionRepoMongoDB(ctx context.Context, db *mongo.Database) (*SuggestionRepoMongoDB, error) {
	coll := db.Collection(collectionName)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating suggestions index: %w", err)
	}
	return &SuggestionRepoMongoDB{coll: coll, seq: infraMongo.NewSequence(db)}, nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoSuggestion struct {
	ID            int64     `bson:"_id"`
	Text          string    `bson:"text"`
	CreatedAt     time.Time `bson:"createdAt"`
	UserID        int64     `bson:"userId"`
	RelatedTaskID *int64    `bson:"relatedTaskId,omitempty"`
}

func (r *SuggestionRepoMongoDB) Save(ctx context.Context, s *domain.Suggestion) error {
	id, err := r.seq.Next(ctx, sequenceName)
	if err != nil {
		return err
	}
	doc := toMongoSuggestion(s)
	doc.ID = id
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting suggestion: %w", err)
	}
	s.ID = id
	return nil
}

func (r *SuggestionRepoMongoDB) GetByID(ctx context.Context, id int64) (*domain.Suggestion, error) {
	var doc mongoSuggestion
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSuggestionNotFound
		}
		return nil, err
	}
	return fromMongoSuggestion(&doc), nil
}

func (r *SuggestionRepoMongoDB) ListByOwner(ctx context.Context, userID int64, page sharedQuery.OffsetPagination) ([]*domain.Suggestion, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*domain.Suggestion{}
	for cursor.Next(ctx) {
		var doc mongoSuggestion
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, fromMongoSuggestion(&doc))
	}
	return out, cursor.Err()
}

func (r *SuggestionRepoMongoDB) Delete(ctx context.Context, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrSuggestionNotFound
	}
	return nil
}

// --- Helpers de Mapeo ---

func toMongoSuggestion(s *domain.Suggestion) *mongoSuggestion {
	return &mongoSuggestion{
		ID: s.ID, Text: s.Text, CreatedAt: s.CreatedAt.UTC(),
		UserID: s.UserID, RelatedTaskID: s.RelatedTaskID,
	}
}

func fromMongoSuggestion(doc *mongoSuggestion) *domain.Suggestion {
	return &domain.Suggestion{
		ID: doc.ID, Text: doc.Text, CreatedAt: doc.CreatedAt,
		UserID: doc.UserID, RelatedTaskID: doc.RelatedTaskID,
	}
}
