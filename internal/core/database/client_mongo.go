package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/models"
)

var _ core.ArticleStore = (*MongoClient)(nil)

// MongoClient keeps one document per article in a single collection, keyed by
// the content id.
type MongoClient struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    logrus.FieldLogger
}

// NewMongoClient configures the driver. mongo.Connect does not dial, so an
// unreachable server surfaces on Ping.
func NewMongoClient(ctx context.Context, uri, database, collection string, log logrus.FieldLogger) (*MongoClient, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	return &MongoClient{
		client: client,
		coll:   client.Database(database).Collection(collection),
		log:    log.WithFields(logrus.Fields{"db": database, "collection": collection}),
	}, nil
}

func (c *MongoClient) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

func (c *MongoClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// UpsertArticle replaces the whole document with the same _id.
func (c *MongoClient) UpsertArticle(ctx context.Context, doc *models.StoredDocument) error {
	if doc == nil {
		return errors.New("nil document")
	}
	_, err := c.coll.ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert article %s: %w", doc.ID, err)
	}
	return nil
}

func (c *MongoClient) GetArticle(ctx context.Context, id string) (*models.StoredDocument, error) {
	var d models.StoredDocument
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", id, err)
	}
	return &d, nil
}

func (c *MongoClient) ListArticles(ctx context.Context, f models.ArticleFilter) ([]models.StoredDocument, error) {
	filter := bson.M{}
	if f.Newspaper != "" {
		filter["newspaper"] = f.Newspaper
	}
	if f.City != "" {
		filter["city"] = f.City
	}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.Hashtag != "" {
		// equality on an array field matches any element
		filter["hashtags"] = f.Hashtag
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(listLimit(f)))

	cur, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.StoredDocument
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return out, nil
}
