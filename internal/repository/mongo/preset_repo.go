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

const presetCollectionName = "presets"

// mongoPresetRepository implements repository.PresetRepository
type mongoPresetRepository struct {
	collection *mongo.Collection
}

// NewMongoPresetRepository creates a new preset repository.
func NewMongoPresetRepository(db *mongo.Database) repository.PresetRepository {
	return &mongoPresetRepository{
		collection: db.Collection(presetCollectionName),
	}
}

// GetByID retrieves a single preset by its ID.
func (r *mongoPresetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Preset, error) {
	var preset domain.Preset
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&preset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &preset, nil
}

// List returns every preset, name-sorted.
func (r *mongoPresetRepository) List(ctx context.Context) ([]domain.Preset, error) {
	var presets []domain.Preset
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &presets); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return presets, nil
}

// EnsureDefaults seeds the built-in presets when the collection is empty.
func (r *mongoPresetRepository) EnsureDefaults(ctx context.Context, presets []domain.Preset) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 || len(presets) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(presets))
	now := time.Now().UTC()
	for _, p := range presets {
		p.ID = primitive.NewObjectID()
		p.CreatedAt = now
		docs = append(docs, p)
	}
	_, err = r.collection.InsertMany(ctx, docs)
	return err
}
