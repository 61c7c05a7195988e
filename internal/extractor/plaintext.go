package extractor

import (
	"os"
	"strings"
)

// extractPlainText 读取纯文本文件。
// 对编码保持宽容：非法UTF-8序列直接丢弃，不让个别坏字节拖垮整份文件。
func extractPlainText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", NewExtractionError("plain", filePath, err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
