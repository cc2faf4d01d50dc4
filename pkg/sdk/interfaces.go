package sdk

import (
	"context"

	"github.com/celerix-dev/celerix-attach/pkg/schema"
)

// --- Functional Interfaces (Interface Segregation) ---

// ItemReader defines the read operations on items.
type ItemReader interface {
	ListItems(ctx context.Context) ([]schema.Item, error)
	GetItem(ctx context.Context, id string) (schema.Item, error)
}

// ItemWriter defines item creation and removal.
type ItemWriter interface {
	CreateItem(ctx context.Context, name, photoPath, filePath string) (schema.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// AttachmentWriter replaces and clears item attachments.
type AttachmentWriter interface {
	ReplacePhoto(ctx context.Context, id, path string) (schema.Item, error)
	ReplaceFile(ctx context.Context, id, path string) (schema.Item, error)
	ClearAttachment(ctx context.Context, id, field string) (bool, error)
}

// AttachService is everything the daemon offers.
type AttachService interface {
	Ping(ctx context.Context) error
	ItemReader
	ItemWriter
	AttachmentWriter
}

var _ AttachService = (*Client)(nil)
