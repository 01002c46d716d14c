package cloudsync

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the concrete DocumentStore backed by Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a Firestore-backed document store for the given
// project. Credentials come from Application Default Credentials unless
// overridden via opts.
func NewFirestoreStore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewFirestoreStore: firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

// Set implements DocumentStore using a merge write, so fields absent from
// data are preserved remotely.
func (f *FirestoreStore) Set(ctx context.Context, collection, docID string, data map[string]interface{}) error {
	_, err := f.client.Collection(collection).Doc(docID).Set(ctx, data, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("Set %s/%s: %w", collection, docID, err)
	}
	return nil
}

// Get implements DocumentStore. A missing document is (nil, nil).
func (f *FirestoreStore) Get(ctx context.Context, collection, docID string) (*Document, error) {
	snap, err := f.client.Collection(collection).Doc(docID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get %s/%s: %w", collection, docID, err)
	}

	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// QueryByUser implements DocumentStore with an equality query on the userId
// field.
func (f *FirestoreStore) QueryByUser(ctx context.Context, collection, userID string) ([]Document, error) {
	iter := f.client.Collection(collection).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryByUser %s: %w", collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}

	return docs, nil
}

// Close releases the underlying Firestore client.
func (f *FirestoreStore) Close() error {
	return f.client.Close()
}

// Ensure FirestoreStore implements the DocumentStore interface.
var _ DocumentStore = (*FirestoreStore)(nil)
