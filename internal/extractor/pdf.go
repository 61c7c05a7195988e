package extractor

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"

	"resume-match-go/internal/logger"
)

// pdfExtractor 基于eino的PDF文本提取，按页解析后拼接
type pdfExtractor struct {
	parser *pdf.PDFParser
}

func newPDFExtractor(ctx context.Context) (*pdfExtractor, error) {
	// ToPages为true时每页返回一个文档，便于按页拼接
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, err
	}
	return &pdfExtractor{parser: p}, nil
}

// extract 提取PDF全文：逐页取出文本，跳过空页，页与页之间以换行符连接
func (e *pdfExtractor) extract(ctx context.Context, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", NewExtractionError("pdf", filePath, err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	startTime := time.Now()
	docs, err := e.parser.Parse(ctx, file, einoParser.WithURI(filePath))
	if err != nil {
		return "", NewExtractionError("pdf", filePath, err)
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		pages = append(pages, doc.Content)
	}
	text := strings.Join(pages, "\n")

	logger.Debug().
		Str("file_path", filePath).
		Int("page_count", len(docs)).
		Int("text_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("PDF文本提取完成")
	return text, nil
}
