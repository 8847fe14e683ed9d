// File: database/repository/ground/interface.go
package groundRepo

import (
	"context"
	"time"

	"boxcric/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// GroundRepository is the persistence contract for grounds. There is no
// delete: grounds are retired by status.
type GroundRepository interface {
	Create(ctx context.Context, ground *models.Ground) error
	GetByID(ctx context.Context, id string) (*models.Ground, error)
	List(ctx context.Context, filter models.GroundFilter) ([]models.Ground, error)
	UpdateStatus(ctx context.Context, id string, upd models.GroundStatusUpdate, at time.Time) (*models.Ground, error)
	AddImage(ctx context.Context, id, url string, at time.Time) error
}

type mongoGroundRepo struct {
	coll *mongo.Collection
}

// NewMongoGroundRepo constructs a MongoDB GroundRepository on db.
func NewMongoGroundRepo(db *mongo.Database) GroundRepository {
	return &mongoGroundRepo{
		coll: db.Collection("grounds"),
	}
}
