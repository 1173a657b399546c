// Package mongo stores settled blocks in MongoDB: one document per block in
// "blocks" and one per transaction, with embedded inputs and outputs, in
// "transactions".
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	blocksCollection       = "blocks"
	transactionsCollection = "transactions"
)

type mongoStore struct {
	client *mongo.Client
	blocks *mongo.Collection
	txs    *mongo.Collection
}

// NewStore connects to uri and uses database.
func NewStore(ctx context.Context, uri, database string) (Store, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	db := client.Database(database)
	return &mongoStore{
		client: client,
		blocks: db.Collection(blocksCollection),
		txs:    db.Collection(transactionsCollection),
	}, nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

func (s *mongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.blocks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "height", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create blocks index: %w", err)
	}
	if _, err := s.txs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "block_height", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create transactions index: %w", err)
	}
	return nil
}

func (s *mongoStore) UpsertBlocks(ctx context.Context, blocks []BlockDoc) error {
	models := make([]mongo.WriteModel, len(blocks))
	for i := range blocks {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: blocks[i].ID}}).
			SetReplacement(blocks[i]).
			SetUpsert(true)
	}
	return bulkWrite(ctx, s.blocks, models)
}

func (s *mongoStore) UpsertTransactions(ctx context.Context, txs []TransactionDoc) error {
	models := make([]mongo.WriteModel, len(txs))
	for i := range txs {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: txs[i].ID}}).
			SetReplacement(txs[i]).
			SetUpsert(true)
	}
	return bulkWrite(ctx, s.txs, models)
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func bulkWrite(ctx context.Context, coll *mongo.Collection, models []mongo.WriteModel) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("bulk write %s: %w", coll.Name(), err)
	}
	return nil
}
