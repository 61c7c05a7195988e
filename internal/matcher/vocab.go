package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Vocabulary 静态关键词表。
// 这是一条与词性过滤技能无关的独立路径：只回答"词表中的哪些词
// 出现在了文本里"，用于语义匹配时的粗粒度关键词重合。
type Vocabulary struct {
	terms []string
}

// NewVocabulary 从词表项构造关键词表，保留传入顺序
func NewVocabulary(terms []string) *Vocabulary {
	return &Vocabulary{terms: terms}
}

// ExtractKeywords 返回文本中出现的词表项。
// 匹配对大小写不敏感且要求完整词出现，"Java"不会命中"JavaScript"；
// 返回值保留词表中的原始写法与顺序。
func (v *Vocabulary) ExtractKeywords(text string) []string {
	lowered := strings.ToLower(text)
	matched := []string{}
	for _, term := range v.terms {
		if term == "" {
			continue
		}
		if containsWholeTerm(lowered, strings.ToLower(term)) {
			matched = append(matched, term)
		}
	}
	return matched
}

// containsWholeTerm 判断term是否作为完整词出现在text中：
// 出现位置的两侧都不能紧邻字母或数字
func containsWholeTerm(text, term string) bool {
	for from := 0; ; {
		idx := strings.Index(text[from:], term)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(term)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		from = start + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Intersect 求两组关键词的交集，大小写敏感的精确比较，保留a的顺序
func Intersect(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, term := range b {
		inB[term] = struct{}{}
	}
	overlap := []string{}
	for _, term := range a {
		if _, ok := inB[term]; ok {
			overlap = append(overlap, term)
		}
	}
	return overlap
}
