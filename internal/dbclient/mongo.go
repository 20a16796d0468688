package dbclient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoConnector implements Connector for MongoDB, one document per id.
type mongoConnector struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type mongoDocument struct {
	ID        string    `bson:"_id"`
	Content   string    `bson:"content"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoURI builds the connection string. A DSN or a host that is already a
// mongodb:// or mongodb+srv:// URI is used directly.
func mongoURI(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	if strings.HasPrefix(cfg.Host, "mongodb+srv://") || strings.HasPrefix(cfg.Host, "mongodb://") {
		uri := cfg.Host
		// Atlas connection strings carry a password placeholder.
		if cfg.Password != "" {
			uri = strings.ReplaceAll(uri, "<password>", cfg.Password)
			uri = strings.ReplaceAll(uri, "<db_password>", cfg.Password)
		}
		return uri
	}
	port := cfg.Port
	if port == 0 {
		port = 27017
	}
	if cfg.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Username, cfg.Password, cfg.Host, port)
	}
	return fmt.Sprintf("mongodb://%s:%d", cfg.Host, port)
}

// mongoDatabase picks the database name from the config or the URI path.
func mongoDatabase(cfg Config, uri string) string {
	if cfg.Database != "" {
		return cfg.Database
	}
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		if strings.HasPrefix(rest, prefix) {
			rest = rest[len(prefix):]
			break
		}
	}
	if at := strings.Index(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	if slash := strings.Index(rest, "/"); slash != -1 {
		path := rest[slash+1:]
		if q := strings.Index(path, "?"); q != -1 {
			path = path[:q]
		}
		if path != "" {
			return path
		}
	}
	return "pagedoc"
}

func newMongoConnector(ctx context.Context, cfg Config) (*mongoConnector, error) {
	uri := mongoURI(cfg)
	dbName := mongoDatabase(cfg, uri)

	logURI := uri
	if cfg.Password != "" {
		logURI = strings.ReplaceAll(logURI, cfg.Password, "***")
	}
	log.Printf("[MONGO] Connecting with URI: %s (database %s)", logURI, dbName)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &mongoConnector{
		client:     client,
		collection: client.Database(dbName).Collection(cfg.table()),
	}, nil
}

func (m *mongoConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *mongoConnector) Load(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var doc mongoDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", id, err)
	}
	return doc.Content, nil
}

func (m *mongoConnector) Save(ctx context.Context, id, value string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	doc := mongoDocument{ID: id, Content: value, UpdatedAt: time.Now().UTC()}
	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

func (m *mongoConnector) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
