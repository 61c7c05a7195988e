package miner

import (
	"regexp"
	"strings"
)

var (
	// 规范的技能区块标题行，整行匹配，允许结尾的冒号或横线
	skillsHeaderRegex = regexp.MustCompile(`(?i)^\s*(technologies|skills|technical skills|skills & technologies)\s*[:\-]?\s*$`)

	// 区块终止符：下一个全大写的短标题行，例如 "EDUCATION" 或 "WORK HISTORY:"
	blockTerminatorRegex = regexp.MustCompile(`^[A-Z0-9 \-]{3,}[:\-]?\s*$`)

	// 候选分隔符：逗号、项目符号、分号、换行
	candidateSplitRegex = regexp.MustCompile(`[,\x{2022};\n]`)
)

// locateSkillsBlock 在文本中定位技能区块并返回其内容。
// 标题识别分两档：先找整行的规范标题，找不到再退回到任意包含
// "skills"子串的行。区块从标题的下一行开始，到空行或下一个
// 大写标题行为止，行与行之间以空格连接。没有标题则返回空串。
func locateSkillsBlock(text string) string {
	lines := strings.Split(text, "\n")

	headerIdx := -1
	for i, line := range lines {
		if skillsHeaderRegex.MatchString(line) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		for i, line := range lines {
			if strings.Contains(strings.ToLower(line), "skills") {
				headerIdx = i
				break
			}
		}
	}
	if headerIdx == -1 {
		return ""
	}

	var blockLines []string
	for _, line := range lines[headerIdx+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			break
		}
		if blockTerminatorRegex.MatchString(trimmed) {
			break
		}
		blockLines = append(blockLines, trimmed)
	}
	return strings.Join(blockLines, " ")
}

// splitSkillCandidates 将技能区块切分为候选条目，去掉装饰字符和空条目
func splitSkillCandidates(block string) []string {
	var candidates []string
	for _, part := range candidateSplitRegex.Split(block, -1) {
		part = strings.Trim(part, " •\t\n\r")
		if part == "" {
			continue
		}
		candidates = append(candidates, part)
	}
	return candidates
}
