package attach

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"
)

// Kind selects the allow-list an upload is checked against.
type Kind int

const (
	KindPhoto Kind = iota
	KindFile
)

func (k Kind) String() string {
	if k == KindFile {
		return "file"
	}
	return "photo"
}

// Upload is a client-submitted payload with the metadata the client declared.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64

	open func() (io.ReadCloser, error)
}

// Open returns a reader over the payload.
func (u *Upload) Open() (io.ReadCloser, error) {
	return u.open()
}

// FromFileHeader wraps a multipart part as received by gin's c.FormFile.
func FromFileHeader(fh *multipart.FileHeader) *Upload {
	return &Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// NewUpload wraps an in-memory payload.
func NewUpload(filename, contentType string, data []byte) *Upload {
	return &Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// mediaType strips parameters such as charset from a declared content type.
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
