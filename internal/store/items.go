package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/celerix-dev/celerix-attach/pkg/schema"
)

const itemColumns = "id, name, photo, file, created_at, updated_at"

// attachmentColumns maps attachment fields to their column. Only these
// names are ever interpolated into SQL.
var attachmentColumns = map[string]string{
	schema.FieldPhoto: "photo",
	schema.FieldFile:  "file",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (schema.Item, error) {
	var (
		it                   schema.Item
		createdAt, updatedAt int64
	)
	if err := row.Scan(&it.ID, &it.Name, &it.Photo, &it.File, &createdAt, &updatedAt); err != nil {
		return schema.Item{}, err
	}
	it.CreatedAt = fromMillis(createdAt)
	it.UpdatedAt = fromMillis(updatedAt)
	return it, nil
}

// PutItem inserts or replaces an item.
func (s *Store) PutItem(ctx context.Context, it schema.Item) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(it.ID) == "" {
		return fmt.Errorf("item id is required")
	}
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("item name is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    photo = excluded.photo,
    file = excluded.file,
    updated_at = excluded.updated_at`,
		it.ID, it.Name, it.Photo, it.File, toMillis(it.CreatedAt), toMillis(it.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// GetItem fetches an item by ID.
func (s *Store) GetItem(ctx context.Context, id string) (schema.Item, error) {
	if err := s.ready(ctx); err != nil {
		return schema.Item{}, err
	}

	it, err := scanItem(s.sqlDB.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schema.Item{}, ErrNotFound
		}
		return schema.Item{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// ListItems returns every item, oldest first.
func (s *Store) ListItems(ctx context.Context) ([]schema.Item, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, "SELECT "+itemColumns+" FROM items ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]schema.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// SetItemAttachment stores path in the attachment field of an item. An
// empty path clears it.
func (s *Store) SetItemAttachment(ctx context.Context, id, field, path string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	column, ok := attachmentColumns[field]
	if !ok {
		return fmt.Errorf("unknown attachment field %q", field)
	}

	res, err := s.sqlDB.ExecContext(ctx,
		"UPDATE items SET "+column+" = ?, updated_at = ? WHERE id = ?",
		path, toMillis(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("set item %s: %w", field, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set item %s: %w", field, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	res, err := s.sqlDB.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
