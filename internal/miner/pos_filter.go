package miner

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// looksLikeSkill 对候选条目做词性过滤。
// 真实的技能条目几乎都由名词和形容词构成（"Python"、"Distributed
// Systems"、"Agile"），而混进技能区的叙述句含有动词和虚词。
// 规则：名词(NN*)与形容词(JJ*)标签的数量不少于全部标签数的一半则
// 接受。无法切出任何词元的候选一律拒绝。
func looksLikeSkill(candidate string) (bool, error) {
	doc, err := prose.NewDocument(candidate,
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		return false, err
	}

	tokens := doc.Tokens()
	if len(tokens) == 0 {
		return false, nil
	}

	nounLike := 0
	for _, tok := range tokens {
		if strings.HasPrefix(tok.Tag, "NN") || strings.HasPrefix(tok.Tag, "JJ") {
			nounLike++
		}
	}
	return float64(nounLike) >= float64(len(tokens))/2, nil
}
