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
	"github.com/davicafu/tasksense/internal/notification/domain"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
)

const (
	collectionName = "notifications"
	sequenceName   = "notifications"
)

type NotificationRepoMongoDB struct {
	coll *mongo.Collection
	seq  *infraMongo.Sequence
}

var _ domain.NotificationRepository = (*NotificationRepoMongoDB)(nil)

func NewNotificationRepoMongoDB(ctx context.Context, db *mongo.Database) (*NotificationRepoMongoDB, error) {
	coll := db.Collection(collectionName)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating notifications index: %w", err)
	}
	return &NotificationRepoMongoDB{coll: coll, seq: infraMongo.NewSequence(db)}, nil
}

type mongoNotification struct {
	ID        int64     `bson:"_id"`
	Message   string    `bson:"message"`
	CreatedAt time.Time `bson:"createdAt"`
	UserID    int64     `bson:"userId"`
}

func (r *NotificationRepoMongoDB) Save(ctx context.Context, n *domain.Notification) error {
	id, err := r.seq.Next(ctx, sequenceName)
	if err != nil {
		return err
	}
	doc := mongoNotification{ID: id, Message: n.Message, CreatedAt: n.CreatedAt.UTC(), UserID: n.UserID}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	n.ID = id
	return nil
}

func (r *NotificationRepoMongoDB) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	var doc mongoNotification
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *NotificationRepoMongoDB) ListByOwner(ctx context.Context, userID int64, page sharedQuery.OffsetPagination) ([]*domain.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	var docs []mongoNotification
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]*domain.Notification, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *NotificationRepoMongoDB) Delete(ctx context.Context, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (d *mongoNotification) toDomain() *domain.Notification {
	return &domain.Notification{ID: d.ID, Message: d.Message, CreatedAt: d.CreatedAt, UserID: d.UserID}
}
