package mongo

import (
	"classtrack/attendance-app/internal/domain"
	"classtrack/attendance-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const timetableCollectionName = "timetables"

// mongoTimetableRepository implements repository.TimetableRepository
type mongoTimetableRepository struct {
	collection *mongo.Collection
}

// NewMongoTimetableRepository creates a new timetable repository.
func NewMongoTimetableRepository(db *mongo.Database) repository.TimetableRepository {
	return &mongoTimetableRepository{
		collection: db.Collection(timetableCollectionName),
	}
}

// GetByUserID retrieves the user's timetable. Returns ErrNotFound when the
// user has never applied a preset.
func (r *mongoTimetableRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.WeeklyTimetable, error) {
	var timetable domain.WeeklyTimetable
	filter := bson.M{"userId": userID}
	err := r.collection.FindOne(ctx, filter).Decode(&timetable)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &timetable, nil
}

// Replace stores the timetable wholesale, inserting when absent. The
// upsert keeps template application a single write.
func (r *mongoTimetableRepository) Replace(ctx context.Context, timetable *domain.WeeklyTimetable) error {
	if timetable.UserID == primitive.NilObjectID {
		return errors.New("timetable requires a userId")
	}
	timetable.UpdatedAt = time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = timetable.UpdatedAt
	}

	filter := bson.M{"userId": timetable.UserID}
	update := bson.M{"$set": bson.M{
		"userId":    timetable.UserID,
		"days":      timetable.Days,
		"updatedAt": timetable.UpdatedAt,
	}, "$setOnInsert": bson.M{
		"createdAt": timetable.CreatedAt,
	}}

	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return repository.ErrUpdateFailed
	}
	return nil
}

// EnsureTimetableIndexes creates necessary indexes. Call during startup.
func EnsureTimetableIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
