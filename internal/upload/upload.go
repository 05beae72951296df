// Package upload validates product images from multipart forms, stores them
// under generated names and removes them again when a later step fails.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/config"
)

// FieldName is the multipart field that carries the product image.
const FieldName = "image"

// ErrNotFound is returned by stores when the named object does not exist.
var ErrNotFound = errors.New("upload not found")

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var allowedExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// storedName matches names produced by Accept; nothing else is ever opened
// or removed.
var storedName = regexp.MustCompile(`^product-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.[a-z0-9]{1,5}$`)

// Store persists image bytes under a flat name.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, name string) error
}

// Image is a validated file part that has not been stored yet.
type Image struct {
	Header      *multipart.FileHeader
	ContentType string // sniffed
	Ext         string // lowercased, with dot
}

// Uploader ties a Store to the public URL prefix and size limit.
type Uploader struct {
	store    Store
	prefix   string
	maxBytes int64
	log      *zerolog.Logger
}

func New(store Store, cfg config.UploadConfig, log *zerolog.Logger) *Uploader {
	return &Uploader{
		store:    store,
		prefix:   strings.TrimRight(cfg.PublicPrefix, "/"),
		maxBytes: cfg.MaxBytes,
		log:      log,
	}
}

// Prefix is the public path under which stored images are served.
func (u *Uploader) Prefix() string { return u.prefix }

// Inspect checks the file parts of form without storing anything.  It
// returns nil when the form carries no image.
func (u *Uploader) Inspect(form *multipart.Form) (*Image, error) {
	if form == nil || len(form.File) == 0 {
		return nil, nil
	}

	total := 0
	for _, fhs := range form.File {
		total += len(fhs)
	}
	switch {
	case total == 0:
		return nil, nil
	case total > 1:
		return nil, apperror.TooManyFiles()
	}

	fhs := form.File[FieldName]
	if len(fhs) == 0 {
		for field := range form.File {
			return nil, apperror.Upload(fmt.Sprintf("Unexpected file field %q.", field))
		}
	}
	fh := fhs[0]

	if fh.Size > u.maxBytes {
		return nil, apperror.FileTooLarge(u.maxBytes)
	}

	declared, _, _ := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if _, ok := allowedTypes[strings.ToLower(declared)]; !ok {
		return nil, invalidType()
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Upload("Could not read uploaded file.").WithCause(err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, apperror.Upload("Could not read uploaded file.").WithCause(err)
	}
	sniffed := mt.String()
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	sniffExt, ok := allowedTypes[sniffed]
	if !ok {
		return nil, invalidType()
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExts[ext] {
		ext = sniffExt
	}
	return &Image{Header: fh, ContentType: sniffed, Ext: ext}, nil
}

func invalidType() *apperror.Error {
	return apperror.Upload("Invalid file type. Only JPEG, PNG, GIF, and WEBP are allowed.")
}

// Accept stores img under a fresh name and returns its public path.
func (u *Uploader) Accept(ctx context.Context, img *Image) (string, error) {
	f, err := img.Header.Open()
	if err != nil {
		return "", apperror.Upload("Could not read uploaded file.").WithCause(err)
	}
	defer f.Close()

	name := "product-" + uuid.NewString() + img.Ext
	if err := u.store.Save(ctx, name, f, img.Header.Size, img.ContentType); err != nil {
		return "", apperror.Upload("Could not store uploaded file.").WithCause(err)
	}
	u.log.Debug().Str("name", name).Int64("size", img.Header.Size).Msg("image stored")
	return u.prefix + "/" + name, nil
}

// Release removes the image behind publicPath.  It never fails: unknown
// paths are ignored and store errors are only logged.
func (u *Uploader) Release(ctx context.Context, publicPath string) {
	name, ok := u.nameOf(publicPath)
	if !ok {
		if publicPath != "" {
			u.log.Warn().Str("path", publicPath).Msg("release skipped: not an upload path")
		}
		return
	}
	if err := u.store.Remove(ctx, name); err != nil && !errors.Is(err, ErrNotFound) {
		u.log.Error().Err(err).Str("name", name).Msg("release image failed")
	}
}

// Open streams a stored image by bare name.
func (u *Uploader) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !storedName.MatchString(name) {
		return nil, "", ErrNotFound
	}
	return u.store.Open(ctx, name)
}

func (u *Uploader) nameOf(publicPath string) (string, bool) {
	dir, name := path.Split(publicPath)
	if strings.TrimRight(dir, "/") != u.prefix || !storedName.MatchString(name) {
		return "", false
	}
	return name, true
}
