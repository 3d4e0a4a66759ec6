package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dialoguehub/pkg/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoDatabase = "dialogues"
	dialogueCollection   = "dialogues"
)

type dialogueDocument struct {
	Number         int           `bson:"number"`
	Title          string        `bson:"title"`
	AudioDriveID   string        `bson:"audioDriveId,omitempty"`
	TranscriptText string        `bson:"transcriptText,omitempty"`
	Highlights     bson.RawValue `bson:"highlights"`
	CreatedAt      time.Time     `bson:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt"`
}

// highlightsEnvelope carries a highlight array through extended JSON, which
// keeps element types and key order when moving between JSON and BSON.
type highlightsEnvelope struct {
	H bson.RawValue `bson:"h"`
}

type highlightsJSON struct {
	H []json.RawMessage `json:"h"`
}

// MongoStore implements Store on a MongoDB collection with a unique index on
// number.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects, pings and ensures the unique number index.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if strings.TrimSpace(database) == "" {
		database = defaultMongoDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	coll := client.Database(database).Collection(dialogueCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure number index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// ListDialogues returns every record ordered by number.
func (s *MongoStore) ListDialogues(ctx context.Context) ([]domain.Dialogue, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "number", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find dialogues: %w", err)
	}
	var docs []dialogueDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode dialogues: %w", err)
	}
	res := make([]domain.Dialogue, 0, len(docs))
	for _, doc := range docs {
		d, err := dialogueFromDocument(doc)
		if err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, nil
}

// GetDialogue returns one record.
func (s *MongoStore) GetDialogue(ctx context.Context, number int) (domain.Dialogue, bool, error) {
	var doc dialogueDocument
	if err := s.coll.FindOne(ctx, bson.M{"number": number}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Dialogue{}, false, nil
		}
		return domain.Dialogue{}, false, fmt.Errorf("find dialogue %d: %w", number, err)
	}
	d, err := dialogueFromDocument(doc)
	if err != nil {
		return domain.Dialogue{}, false, err
	}
	return d, true, nil
}

// ReplaceHighlights upserts the record and overwrites its highlights.
func (s *MongoStore) ReplaceHighlights(ctx context.Context, number int, highlights []domain.Highlight) error {
	value, err := highlightsToBSON(highlights)
	if err != nil {
		return fmt.Errorf("save highlights for %d: %w", number, err)
	}
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"highlights": value,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"title":     domain.DefaultTitle(number),
			"createdAt": now,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err = s.coll.UpdateOne(ctx, bson.M{"number": number}, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert inserted the record first; the retry matches it.
		_, err = s.coll.UpdateOne(ctx, bson.M{"number": number}, update, opts)
	}
	if err != nil {
		return fmt.Errorf("save highlights for %d: %w", number, err)
	}
	return nil
}

// ImportTranscript sets transcriptText only on records where it is missing
// or empty. When the record already has text the filter does not match, the
// upsert collides with the unique index, and the stored text is returned.
func (s *MongoStore) ImportTranscript(ctx context.Context, number int, text string) (string, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"number": number,
		"$or": bson.A{
			bson.M{"transcriptText": bson.M{"$exists": false}},
			bson.M{"transcriptText": ""},
			bson.M{"transcriptText": nil},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"transcriptText": text,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{
			"title":      domain.DefaultTitle(number),
			"highlights": bson.A{},
			"createdAt":  now,
		},
	}
	_, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("import transcript for %d: %w", number, err)
	}
	stored, ok, err := s.GetDialogue(ctx, number)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("import transcript: dialogue %d missing after upsert", number)
	}
	return stored.TranscriptText, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func highlightsToBSON(highlights []domain.Highlight) (bson.RawValue, error) {
	arr, err := json.Marshal(normalizeHighlights(highlights))
	if err != nil {
		return bson.RawValue{}, fmt.Errorf("encode highlights: %w", err)
	}
	var env highlightsEnvelope
	if err := bson.UnmarshalExtJSON([]byte(`{"h":`+string(arr)+`}`), false, &env); err != nil {
		return bson.RawValue{}, fmt.Errorf("convert highlights: %w", err)
	}
	return env.H, nil
}

func highlightsFromBSON(v bson.RawValue) ([]domain.Highlight, error) {
	if v.Type == 0 || v.Type == bson.TypeNull {
		return []domain.Highlight{}, nil
	}
	data, err := bson.MarshalExtJSON(bson.D{{Key: "h", Value: v}}, false, false)
	if err != nil {
		return nil, err
	}
	var out highlightsJSON
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return normalizeHighlights(out.H), nil
}

func dialogueFromDocument(d dialogueDocument) (domain.Dialogue, error) {
	highlights, err := highlightsFromBSON(d.Highlights)
	if err != nil {
		return domain.Dialogue{}, fmt.Errorf("decode highlights of dialogue %d: %w", d.Number, err)
	}
	return domain.Dialogue{
		Number:         d.Number,
		Title:          d.Title,
		AudioDriveID:   d.AudioDriveID,
		TranscriptText: d.TranscriptText,
		Highlights:     highlights,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}
