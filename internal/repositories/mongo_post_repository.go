package repositories

import (
	"context"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes the feed and profile queries rely on.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return errors.Wrap(err, "create post indexes")
}

func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.EnsureID()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, post)
	return errors.Wrap(err, "insert post")
}

func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find post")
	}
	return &post, nil
}

func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID uint) ([]models.Post, error) {
	filter := bson.M{
		"user_id": userID,
		"$or": bson.A{
			bson.M{"image_url": bson.M{"$exists": true, "$ne": ""}},
			bson.M{"video_url": bson.M{"$exists": true, "$ne": ""}},
		},
	}
	return r.find(ctx, filter, options.Find().SetSort(newestFirst))
}

func (r *MongoPostRepository) GetPostsByUserIDs(ctx context.Context, userIDs []uint) ([]models.Post, error) {
	if len(userIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}}, options.Find().SetSort(newestFirst))
}

func (r *MongoPostRepository) SamplePostsExcludingUsers(ctx context.Context, userIDs []uint, limit int) ([]models.Post, error) {
	if userIDs == nil {
		userIDs = []uint{}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": bson.M{"$nin": userIDs}}}},
		{{Key: "$sample", Value: bson.M{"size": limit}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "sample posts")
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, errors.Wrap(err, "decode posts")
	}
	return posts, nil
}

func (r *MongoPostRepository) CountPostsByUserID(ctx context.Context, userID uint) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	return count, errors.Wrap(err, "count posts")
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find posts")
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, errors.Wrap(err, "decode posts")
	}
	return posts, nil
}
