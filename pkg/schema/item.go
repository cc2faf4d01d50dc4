package schema

import "time"

// ItemsTable is the table items are stored in. Attachments of items land in
// a directory of the same name.
const ItemsTable = "items"

// Attachment field names of an Item.
const (
	FieldPhoto = "photo"
	FieldFile  = "file"
)

// Item is a catalog record with an optional photo and an optional file.
// Photo and File hold the stored attachment paths, empty when unset.
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Photo     string    `json:"photo,omitempty"`
	File      string    `json:"file,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table the item belongs to.
func (i *Item) TableName() string { return ItemsTable }

// AttachmentPath returns the stored path for field, or "" when the field is
// unset or unknown.
func (i *Item) AttachmentPath(field string) string {
	switch field {
	case FieldPhoto:
		return i.Photo
	case FieldFile:
		return i.File
	}
	return ""
}

// SetAttachmentPath updates the in-memory path for field. It reports false
// for unknown fields.
func (i *Item) SetAttachmentPath(field, path string) bool {
	switch field {
	case FieldPhoto:
		i.Photo = path
	case FieldFile:
		i.File = path
	default:
		return false
	}
	return true
}

// AttachmentPaths returns every non-empty attachment path of the item.
func (i *Item) AttachmentPaths() []string {
	var out []string
	for _, p := range []string{i.Photo, i.File} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
