package corpus

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rushteam/cfkit/core"
)

// MongoLoader 从 MongoDB 集合加载评分观测，作为行式日志之外的语料来源。
// 文档结构复用 core.Rating 的 bson tag：{user_id, item_id, rating}。
type MongoLoader struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoLoader 连接 MongoDB 并定位评分集合。
func NewMongoLoader(ctx context.Context, uri, database, collection string) (*MongoLoader, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoLoader{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Load 全量读取集合中的评分观测。
func (l *MongoLoader) Load(ctx context.Context) ([]core.Rating, error) {
	cursor, err := l.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.Rating
	for cursor.Next(ctx) {
		var r core.Rating
		if err := cursor.Decode(&r); err != nil {
			return nil, fmt.Errorf("mongo decode: %w", err)
		}
		out = append(out, r)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor: %w", err)
	}
	return out, nil
}

// LoadCorpus 读取集合并直接构建语料。
func (l *MongoLoader) LoadCorpus(ctx context.Context) (*Corpus, error) {
	ratings, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return FromRatings(ctx, ratings)
}

// Close 断开 MongoDB 连接。
func (l *MongoLoader) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}
