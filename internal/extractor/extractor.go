package extractor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"resume-match-go/internal/logger"
)

// ErrUnsupportedFormat 文件格式不在支持范围内（pdf、docx、纯文本）
var ErrUnsupportedFormat = errors.New("不支持的文件格式")

// ExtractionError 表示对受支持格式的提取失败，携带底层原因
type ExtractionError struct {
	Format string // 识别出的格式，例如 "pdf"
	Source string // 源文件路径
	Err    error  // 底层错误
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("提取%s文本失败 (%s): %v", e.Format, e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError 构造提取失败错误
func NewExtractionError(format, source string, err error) *ExtractionError {
	return &ExtractionError{Format: format, Source: source, Err: err}
}

// Format 提取器支持的文件格式
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatPlain Format = "plain"
)

// Extractor 从简历文件中提取纯文本，按格式分派到对应的解析路径
type Extractor struct {
	pdf *pdfExtractor
}

// New 创建文本提取器。PDF解析器的初始化可能失败，因此返回错误。
func New(ctx context.Context) (*Extractor, error) {
	p, err := newPDFExtractor(ctx)
	if err != nil {
		return nil, fmt.Errorf("初始化PDF解析器失败: %w", err)
	}
	return &Extractor{pdf: p}, nil
}

// Extract 从文件中提取纯文本。
// 先按扩展名识别格式，识别不出时嗅探文件内容；两者都无法识别
// 则返回ErrUnsupportedFormat。受支持格式的解析失败返回ExtractionError。
func (e *Extractor) Extract(ctx context.Context, filePath string) (string, error) {
	format, err := e.detectFormat(filePath)
	if err != nil {
		return "", err
	}

	logger.Debug().
		Str("file_path", filePath).
		Str("format", string(format)).
		Msg("开始提取文本")

	switch format {
	case FormatPDF:
		return e.pdf.extract(ctx, filePath)
	case FormatDOCX:
		return extractDOCX(filePath)
	case FormatPlain:
		return extractPlainText(filePath)
	default:
		return "", ErrUnsupportedFormat
	}
}

// detectFormat 识别文件格式。扩展名优先，无法判断时退回到内容嗅探。
func (e *Extractor) detectFormat(filePath string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt", ".text", ".md":
		return FormatPlain, nil
	}

	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return "", NewExtractionError("unknown", filePath, err)
	}
	switch {
	case mtype.Is("application/pdf"):
		return FormatPDF, nil
	case mtype.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return FormatDOCX, nil
	case strings.HasPrefix(mtype.String(), "text/"):
		return FormatPlain, nil
	}

	logger.Warn().
		Str("file_path", filePath).
		Str("detected_mime", mtype.String()).
		Msg("无法识别的文件格式")
	return "", ErrUnsupportedFormat
}
