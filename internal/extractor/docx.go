package extractor

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// extractDOCX 从docx文件中提取纯文本。
// docx本质是zip包，正文位于word/document.xml；逐段读取w:t文本节点，
// 段落之间以换行符连接，跳过空段落。
func extractDOCX(filePath string) (string, error) {
	archive, err := zip.OpenReader(filePath)
	if err != nil {
		return "", NewExtractionError("docx", filePath, err)
	}
	defer archive.Close()

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", NewExtractionError("docx", filePath, errors.New("缺少word/document.xml"))
	}

	reader, err := document.Open()
	if err != nil {
		return "", NewExtractionError("docx", filePath, err)
	}
	defer reader.Close()

	text, err := walkDocumentXML(reader)
	if err != nil {
		return "", NewExtractionError("docx", filePath, err)
	}
	return text, nil
}

// walkDocumentXML 遍历document.xml的标记流，收集段落文本
func walkDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t": // w:t 文本节点
				inText = true
			case "tab":
				current.WriteByte(' ')
			case "br":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p": // 段落结束
				if para := strings.TrimSpace(current.String()); para != "" {
					paragraphs = append(paragraphs, para)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	if para := strings.TrimSpace(current.String()); para != "" {
		paragraphs = append(paragraphs, para)
	}
	return strings.Join(paragraphs, "\n"), nil
}
