package sensor

import (
	"context"

	"github.com/plantops/kpihub/pkg/tenantctx"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PowerReading is one sensor sample. RecordTime is stored as a
// "yyyy-MM-dd HH:mm:ss" string, so lexicographic comparison matches
// chronological order.
type PowerReading struct {
	Site        string  `bson:"site"`
	CompanyCode string  `bson:"company_code"`
	DeviceID    string  `bson:"device_id"`
	Power       float64 `bson:"power"`
	RecordTime  string  `bson:"record_time"`
}

// Repository reads power samples for one tenant and window.
type Repository interface {
	// PowerReadings returns samples in [start, end), tenant-scoped, optionally
	// restricted to a single device.
	PowerReadings(ctx context.Context, tenant tenantctx.Tenant, start, end string, deviceID string) ([]PowerReading, error)
}

type repo struct {
	collection *mongo.Collection
}

func ProvideRepository(collection *mongo.Collection) Repository {
	return &repo{collection: collection}
}

func (r *repo) PowerReadings(ctx context.Context, tenant tenantctx.Tenant, start, end string, deviceID string) ([]PowerReading, error) {
	filter := bson.M{
		"site":         tenant.Site,
		"company_code": tenant.CompanyCode,
		"record_time":  bson.M{"$gte": start, "$lt": end},
	}
	if deviceID != "" {
		filter["device_id"] = deviceID
	}

	opts := options.Find().SetSort(bson.D{{Key: "record_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var readings []PowerReading
	if err := cursor.All(ctx, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}
