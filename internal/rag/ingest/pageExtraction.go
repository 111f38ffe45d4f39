package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

func extractPDF(path string) ([]rawPage, error) {
	log := logger.With("path", path)
	f, err := pdf.Open(path)
	if err != nil {
		log.Error("failed opening of pdf file", "error", err)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	log.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			log.Debug("extractPDF", "skipping null page", i)
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// one bad page should not lose the document
			log.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

// extractdocxTxtRtf reads a .odt, .docx, .rtf or plaintext file as a single page.
func extractdocxTxtRtf(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc", "path", path, "error", err)
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}

	return []rawPage{
		{
			Number:  1,
			Content: text,
		},
	}, nil
}

var (
	pageExtractTimeout = 10 * time.Second
	readPage           = func(page pdf.Page) (string, error) { return page.GetPlainText(nil) }
)

// protectExtract bounds GetPlainText, which can spin or panic on malformed pages.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)
	read := readPage

	go func() {
		// a recover in the caller cannot see this goroutine
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page reader panicked: %v", r)}
			}
		}()
		content, err := read(page)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageExtractTimeout):
		return "", errors.New("page extraction timed out")
	}
}
