// Package firestore adapts the hosted document store to the interfaces the
// rest of the service consumes: direct writes with server-clock timestamps,
// atomic batched status updates, one-off queries, and real-time snapshot
// listeners.
package firestore

import (
	"context"
	"fmt"
	"log/slog"

	fs "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// Client wraps the Firestore connection for the app's collections.
type Client struct {
	fs     *fs.Client
	logger *slog.Logger
}

// New connects to Firestore through the Firebase app. credentialsFile may be
// empty, in which case application default credentials are used.
func New(ctx context.Context, projectID, credentialsFile string, logger *slog.Logger) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}

	return &Client{fs: client, logger: logger}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.fs.Close()
}
