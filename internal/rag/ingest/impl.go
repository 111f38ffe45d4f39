package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
)

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".rtf", ".odt":
		return commonModels.DOCX
	case ".txt", ".md":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

func extractText(path string, contentType commonModels.DocType) ([]rawPage, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(path)
	case commonModels.DOCX, commonModels.TXT:
		return extractdocxTxtRtf(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, contentType)
	}
}
