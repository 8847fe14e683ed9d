package groundRepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"boxcric/database/repository"
	"boxcric/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoGroundRepo) Create(ctx context.Context, ground *models.Ground) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, ground); err != nil {
		return fmt.Errorf("failed to create ground: %w", err)
	}
	return nil
}

func (r *mongoGroundRepo) GetByID(ctx context.Context, id string) (*models.Ground, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ground models.Ground
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&ground); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch ground %s: %w", id, err)
	}
	return &ground, nil
}

func (r *mongoGroundRepo) List(ctx context.Context, filter models.GroundFilter) ([]models.Ground, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, buildGroundQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list grounds: %w", err)
	}
	defer cursor.Close(ctx)

	grounds := []models.Ground{}
	if err := cursor.All(ctx, &grounds); err != nil {
		return nil, fmt.Errorf("error decoding grounds: %w", err)
	}
	return grounds, nil
}

func buildGroundQuery(filter models.GroundFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.CityID != "" {
		query["location.cityId"] = filter.CityID
	}
	price := bson.M{}
	if filter.MinPrice > 0 {
		price["$gte"] = filter.MinPrice
	}
	if filter.MaxPrice > 0 {
		price["$lte"] = filter.MaxPrice
	}
	if len(price) > 0 {
		query["price.perHour"] = price
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"location.address": pattern},
		}
	}
	return query
}

func (r *mongoGroundRepo) UpdateStatus(ctx context.Context, id string, upd models.GroundStatusUpdate, at time.Time) (*models.Ground, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": at}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.IsVerified != nil {
		set["isVerified"] = *upd.IsVerified
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ground models.Ground
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&ground)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update ground %s: %w", id, err)
	}
	return &ground, nil
}

func (r *mongoGroundRepo) AddImage(ctx context.Context, id, url string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$push": bson.M{"images": url},
		"$set":  bson.M{"updatedAt": at},
	})
	if err != nil {
		return fmt.Errorf("failed to add image to ground %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
