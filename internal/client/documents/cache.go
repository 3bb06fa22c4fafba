package documents

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

var (
	ErrTooSmall = errors.New("document is too small")
	ErrHTMLPage = errors.New("server returned an html page instead of a document")
	ErrNotPDF   = errors.New("document is not a pdf")
)

type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, string, error)
}

// Validate accepts a PDF by its header, or by a pdf content type when the
// header is missing. HTML (captcha and error pages) is always rejected.
func Validate(data []byte, contentType string) error {
	if len(data) < 4 {
		return ErrTooSmall
	}

	head := bytes.ToUpper(data[:min(len(data), 15)])
	if bytes.Contains(head, []byte("<!DOCTYPE")) || bytes.Contains(head, []byte("<HTML")) {
		return ErrHTMLPage
	}
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return nil
	}
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return nil
	}
	return ErrNotPDF
}

var unsafeChars = strings.NewReplacer("/", "_", `\`, "_", " ", "_")

func namePrefix(caseID int, docID string) string {
	return "case_" + strconv.Itoa(caseID) + "_" + unsafeChars.Replace(docID) + "_"
}

// FileName is case_{id}_{doc}_{hash}.pdf where hash is derived from the URL,
// so a document re-issued under a new link gets a new file.
func FileName(caseID int, docID, url string) string {
	sum := blake2b.Sum256([]byte(url))
	return namePrefix(caseID, docID) + hex.EncodeToString(sum[:8]) + ".pdf"
}

type Cache struct {
	dl    Downloader
	store BlobStore
	log   logging.Logger
}

func NewCache(dl Downloader, store BlobStore, log logging.Logger) *Cache {
	return &Cache{dl: dl, store: store, log: log.With("component", "documents")}
}

// Fetch returns the document, downloading and storing it on first use.
// The returned name identifies the stored copy.
func (c *Cache) Fetch(ctx context.Context, caseID int, docID, url string) ([]byte, string, error) {
	name := FileName(caseID, docID, url)

	data, err := c.store.Get(ctx, name)
	switch {
	case err == nil && len(data) > 0:
		c.log.Debug(ctx, "document found in cache", "name", name, "size", len(data))
		return data, name, nil
	case err == nil:
		c.log.Warn(ctx, "cached document is empty, downloading again", "name", name)
	case !errors.Is(err, ErrNotFound):
		c.log.Warn(ctx, "document cache read failed", "name", name, "error", err)
	}

	data, contentType, err := c.dl.Download(ctx, url)
	if err != nil {
		return nil, "", fmt.Errorf("download document: %w", err)
	}
	if err := Validate(data, contentType); err != nil {
		return nil, "", err
	}

	if err := c.store.Put(ctx, name, data, "application/pdf"); err != nil {
		return nil, "", fmt.Errorf("store document: %w", err)
	}
	c.log.Info(ctx, "document cached", "name", name, "size", len(data))
	return data, name, nil
}

// Cached looks a document up without the URL, for offline use.
func (c *Cache) Cached(ctx context.Context, caseID int, docID string) ([]byte, string, bool) {
	names, err := c.store.List(ctx, namePrefix(caseID, docID))
	if err != nil {
		c.log.Warn(ctx, "document list failed", "error", err)
		return nil, "", false
	}
	for _, name := range names {
		if !strings.HasSuffix(name, ".pdf") {
			continue
		}
		data, err := c.store.Get(ctx, name)
		if err == nil && len(data) > 0 {
			return data, name, true
		}
	}
	return nil, "", false
}

// Purge removes every cached document.
func (c *Cache) Purge(ctx context.Context) error {
	names, err := c.store.List(ctx, "case_")
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range names {
		if err := c.store.Delete(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
