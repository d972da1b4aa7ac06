package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"video-hub/internal/domain/dto"
	"video-hub/internal/domain/entities"
	"video-hub/internal/domain/repositories"
)

const videoCollection = "videos"

type videoDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	VideoFile   string             `bson:"videoFile"`
	Thumbnail   string             `bson:"thumbnail"`
	Duration    float64            `bson:"duration"`
	Owner       primitive.ObjectID `bson:"owner,omitempty"`
	IsPublished bool               `bson:"isPublished"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// MongoVideoRepository keeps videos in the "videos" collection. Ids and
// owners are stored as ObjectIDs and exposed as hex strings.
type MongoVideoRepository struct {
	coll *mongo.Collection
}

func NewMongoVideoRepository(db *mongo.Database) *MongoVideoRepository {
	return &MongoVideoRepository{coll: db.Collection(videoCollection)}
}

var _ repositories.VideoRepository = (*MongoVideoRepository)(nil)

// EnsureIndexes creates the indexes listing relies on. It is idempotent.
func (r *MongoVideoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

func (r *MongoVideoRepository) Create(ctx context.Context, video *entities.Video) error {
	doc, err := toDocument(video)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return err
}

func (r *MongoVideoRepository) FindByID(ctx context.Context, id string) (*entities.Video, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc videoDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	video := fromDocument(doc)
	return &video, nil
}

func (r *MongoVideoRepository) List(ctx context.Context, filter dto.VideoFilter) ([]entities.Video, int64, error) {
	query, ok := listQuery(filter)
	if !ok {
		return []entities.Video{}, 0, nil
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	videos := make([]entities.Video, 0)
	if total == 0 {
		return videos, 0, nil
	}

	cursor, err := r.coll.Find(ctx, query, listOptions(filter))
	if err != nil {
		return nil, 0, err
	}
	var docs []videoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	for _, doc := range docs {
		videos = append(videos, fromDocument(doc))
	}
	return videos, total, nil
}

// listQuery builds the match document for List. It reports false when the
// filter can match nothing, such as an owner id that is not an ObjectID.
func listQuery(filter dto.VideoFilter) (bson.M, bool) {
	query := bson.M{}
	if filter.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	if filter.OwnerID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.OwnerID)
		if err != nil {
			return nil, false
		}
		query["owner"] = oid
	}
	return query, true
}

func listOptions(filter dto.VideoFilter) *options.FindOptions {
	field := filter.SortBy
	if _, ok := sortColumns[field]; !ok {
		field = "createdAt"
	}
	direction := 1
	if filter.Desc {
		direction = -1
	}
	return options.Find().
		SetSort(bson.D{{Key: field, Value: direction}, {Key: "_id", Value: direction}}).
		SetSkip(int64(filter.Skip)).
		SetLimit(int64(filter.Limit))
}

func (r *MongoVideoRepository) Update(ctx context.Context, video *entities.Video) error {
	video.UpdatedAt = time.Now()
	doc, err := toDocument(video)
	if err != nil {
		return err
	}
	_, err = r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	return err
}

func (r *MongoVideoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func toDocument(v *entities.Video) (videoDocument, error) {
	oid, err := primitive.ObjectIDFromHex(v.ID)
	if err != nil {
		return videoDocument{}, fmt.Errorf("video id %q: %w", v.ID, err)
	}
	doc := videoDocument{
		ID:          oid,
		Title:       v.Title,
		Description: v.Description,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Duration:    v.Duration,
		IsPublished: v.IsPublished,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
	if v.Owner != "" {
		owner, err := primitive.ObjectIDFromHex(v.Owner)
		if err != nil {
			return videoDocument{}, fmt.Errorf("owner id %q: %w", v.Owner, err)
		}
		doc.Owner = owner
	}
	return doc, nil
}

func fromDocument(doc videoDocument) entities.Video {
	v := entities.Video{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		VideoFile:   doc.VideoFile,
		Thumbnail:   doc.Thumbnail,
		Duration:    doc.Duration,
		IsPublished: doc.IsPublished,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if !doc.Owner.IsZero() {
		v.Owner = doc.Owner.Hex()
	}
	return v
}
