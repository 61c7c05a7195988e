package matcher

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Normalize 将文本整理为适合向量化的形态：
// 小写化，按非字母数字切分，去掉英文停用词，再以空格拼回。
func Normalize(text string) string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if english.IsStopWord(token) {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}
