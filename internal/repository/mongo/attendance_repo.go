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

const attendanceCollectionName = "attendance"

// mongoAttendanceRepository implements repository.AttendanceRepository
type mongoAttendanceRepository struct {
	collection *mongo.Collection
}

// NewMongoAttendanceRepository creates a new attendance repository.
func NewMongoAttendanceRepository(db *mongo.Database) repository.AttendanceRepository {
	return &mongoAttendanceRepository{
		collection: db.Collection(attendanceCollectionName),
	}
}

// GetByUserID retrieves the user's full attendance sheet.
func (r *mongoAttendanceRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.AttendanceSheet, error) {
	var sheet domain.AttendanceSheet
	filter := bson.M{"userId": userID}
	err := r.collection.FindOne(ctx, filter).Decode(&sheet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &sheet, nil
}

// Save writes the whole sheet back, inserting when absent. All ledger
// edits and the recomputed counters of one mutation land in this single
// document write.
func (r *mongoAttendanceRepository) Save(ctx context.Context, sheet *domain.AttendanceSheet) error {
	if sheet.UserID == primitive.NilObjectID {
		return errors.New("attendance sheet requires a userId")
	}
	sheet.UpdatedAt = time.Now().UTC()
	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = sheet.UpdatedAt
	}

	filter := bson.M{"userId": sheet.UserID}
	update := bson.M{"$set": bson.M{
		"userId":         sheet.UserID,
		"subjects":       sheet.Subjects,
		"lastArchiveKey": sheet.LastArchiveKey,
		"updatedAt":      sheet.UpdatedAt,
	}, "$setOnInsert": bson.M{
		"createdAt": sheet.CreatedAt,
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

// DeleteByUserID removes the user's sheet entirely. Used when a new
// template replaces the schedule and the old ledger is being reset.
// Deleting a sheet that does not exist is not an error.
func (r *mongoAttendanceRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}

// EnsureAttendanceIndexes creates necessary indexes. Call during startup.
func EnsureAttendanceIndexes(ctx context.Context, collection *mongo.Collection) {
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
