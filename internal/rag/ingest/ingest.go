package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var (
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrExtractionFailed    = errors.New("could not read document")
)

var logger = logger_i.NewLogger("Document Extraction")

// ExtractDocument pulls the plain text out of an uploaded file and removes the
// temporary file afterwards. An empty text is not an error here: document QA
// degrades on it. The PDF reader panics on malformed files, which is reported
// as ErrExtractionFailed.
func ExtractDocument(ctx context.Context, name, path string) (doc commonModels.Document, err error) {
	log := logger.FromContext(ctx).With("filename", name, "path", path)
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Error("Error removing file", "error", rmErr)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Error("Document reader panicked", "panic", r)
			doc, err = commonModels.Document{}, fmt.Errorf("%w: %v", ErrExtractionFailed, r)
		}
	}()

	docType := getDocType(path)
	log.Debug("Processing document", "type", docType)
	if docType == commonModels.ERR {
		return commonModels.Document{}, fmt.Errorf("%w: %s", ErrUnsupportedDocument, name)
	}

	pages, err := extractText(path, docType)
	if err != nil {
		log.Error("Error processing document", "error", err)
		return commonModels.Document{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	log.Debug("Processing document", "Number of raw pages: ", len(pages))

	return commonModels.Document{
		Name:    name,
		Content: joinPages(pages),
	}, nil
}

func joinPages(pages []rawPage) string {
	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		if t := strings.TrimSpace(p.Content); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n\n")
}
