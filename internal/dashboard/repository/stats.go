package repository

import (
	"context"
	"fmt"
	"time"

	bookingsrepo "innkeep/internal/bookings/repository"
	directoryrepo "innkeep/internal/directory/repository"
	"innkeep/pkg/config"
	mongotx "innkeep/pkg/db/mongo"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingCount selects bookings to count. Zero values match everything.
type BookingCount struct {
	Statuses   []string
	CheckInOn  *time.Time
	CheckOutOn *time.Time
}

type StatsRepository interface {
	CountBookings(ctx context.Context, q BookingCount) (int64, error)
	CountRooms(ctx context.Context) (int64, error)
	CountPackages(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]*model.Booking, error)
}

type mongoStatsRepository struct {
	cfg      *config.Config
	bookings *mongo.Collection
	rooms    *mongo.Collection
	packages *mongo.Collection
}

func NewMongoStatsRepository(cfg *config.Config) StatsRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStatsRepository{
		cfg:      cfg,
		bookings: db.Collection(bookingsrepo.CollectionName),
		rooms:    db.Collection(directoryrepo.RoomsCollection),
		packages: db.Collection(directoryrepo.PackagesCollection),
	}
}

func buildCountFilter(q BookingCount) bson.M {
	filter := bson.M{}
	if len(q.Statuses) > 0 {
		filter["status"] = bson.M{"$in": q.Statuses}
	}
	if q.CheckInOn != nil {
		filter["check_in"] = *q.CheckInOn
	}
	if q.CheckOutOn != nil {
		filter["check_out"] = *q.CheckOutOn
	}
	return filter
}

func (r *mongoStatsRepository) CountBookings(ctx context.Context, q BookingCount) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.bookings.CountDocuments(ctx, buildCountFilter(q))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoStatsRepository) CountRooms(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.rooms.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

func (r *mongoStatsRepository) CountPackages(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.packages.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count packages: %w", err)
	}
	return count, nil
}

// Revenue sums the totals of bookings that are paid. Refunded bookings carry
// payment_status refunded and are excluded.
func (r *mongoStatsRepository) Revenue(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"payment_status": model.PaymentPaid}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total_price"}}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode revenue: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (r *mongoStatsRepository) Recent(ctx context.Context, limit int) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.bookings.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode recent bookings: %w", err)
	}
	return bookings, nil
}
