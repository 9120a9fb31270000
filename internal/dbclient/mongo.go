package dbclient

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"drawboard/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoConnector lists the collections of a MongoDB database.
type mongoConnector struct {
	client *mongo.Client
	dbName string
}

// buildMongoURI returns the connection URI and database name for src. A
// host that is already a mongodb:// or mongodb+srv:// URI is used as is,
// with Atlas-style password placeholders filled in.
func buildMongoURI(src *domain.SchemaSource, password string) (string, string) {
	var uri string
	if strings.HasPrefix(src.Host, "mongodb+srv://") || strings.HasPrefix(src.Host, "mongodb://") {
		uri = src.Host
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", password)
			uri = strings.ReplaceAll(uri, "<db_password>", password)
		}
	} else {
		port := src.Port
		if port == 0 {
			port = 27017
		}
		if src.Username != "" {
			uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", src.Username, password, src.Host, port)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%d", src.Host, port)
		}
	}

	dbName := src.Database
	if dbName == "" {
		dbName = databaseFromURI(uri)
	}
	return uri, dbName
}

// databaseFromURI extracts the path segment of user:pass@host/DB?params.
func databaseFromURI(uri string) string {
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		rest = strings.TrimPrefix(rest, prefix)
	}
	if at := strings.LastIndex(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	_, path, ok := strings.Cut(rest, "/")
	if !ok {
		return "test"
	}
	path, _, _ = strings.Cut(path, "?")
	if path == "" {
		return "test"
	}
	return path
}

func newMongoConnector(src *domain.SchemaSource, password string) (*mongoConnector, error) {
	uri, dbName := buildMongoURI(src, password)

	logURI := uri
	if password != "" {
		logURI = strings.ReplaceAll(logURI, password, "***")
	}
	log.Printf("[MONGO] Connecting with URI: %s (db %s)", logURI, dbName)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &mongoConnector{client: client, dbName: dbName}, nil
}

func (m *mongoConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *mongoConnector) Introspect(ctx context.Context) (*SchemaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db := m.client.Database(m.dbName)
	collections, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(collections)

	schema := &SchemaInfo{}
	for _, name := range collections {
		info := TableInfo{Name: name}
		// Sample one document for field names.
		var doc bson.M
		if db.Collection(name).FindOne(ctx, bson.M{}).Decode(&doc) == nil {
			for k, v := range doc {
				info.Columns = append(info.Columns, ColumnInfo{Name: k, Type: fmt.Sprintf("%T", v)})
			}
			sort.Slice(info.Columns, func(i, j int) bool { return info.Columns[i].Name < info.Columns[j].Name })
		}
		schema.Tables = append(schema.Tables, info)
	}
	return schema, nil
}

func (m *mongoConnector) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
