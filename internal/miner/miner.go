package miner

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

var (
	// 邮箱的通用形态，宽松匹配后整体去重
	emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// 电话候选片段：以数字或+开头，允许常见分隔符，至少7位字符。
	// 候选只负责圈定范围，能否成为电话由号码库的校验决定。
	phoneCandidateRegex = regexp.MustCompile(`\+?\d[\d\s().\-/]{5,}\d`)
)

// Miner 从简历纯文本中挖掘邮箱、电话和技能
type Miner struct {
	defaultRegion string
}

// New 创建实体挖掘器。defaultRegion用于解析不带国际区号的电话号码，
// 例如 "US"、"CN"；为空时此类号码会被跳过。
func New(defaultRegion string) *Miner {
	return &Miner{defaultRegion: defaultRegion}
}

// Mine 对文本执行全部挖掘路径。任何一路没有结果都返回空列表而非错误。
func (m *Miner) Mine(text string) types.MinedEntities {
	return types.MinedEntities{
		Emails: m.MineEmails(text),
		Phones: m.MinePhones(text),
		Skills: m.MineSkills(text),
	}
}

// MineEmails 提取文本中的邮箱地址。按小写形式去重，
// 同一地址的不同大小写写法只保留首次出现的那份。
func (m *Miner) MineEmails(text string) []string {
	seen := make(map[string]struct{})
	emails := []string{}
	for _, match := range emailRegex.FindAllString(text, -1) {
		key := strings.ToLower(match)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		emails = append(emails, match)
	}
	return emails
}

// MinePhones 提取文本中的电话号码并统一为E.164格式。
// 无法确定归属地区或校验不通过的候选直接跳过，不产生错误；
// 同一号码的不同写法在归一化后合并为一条。
func (m *Miner) MinePhones(text string) []string {
	seen := make(map[string]struct{})
	phones := []string{}
	for _, candidate := range phoneCandidateRegex.FindAllString(text, -1) {
		num, err := phonenumbers.Parse(strings.TrimSpace(candidate), m.defaultRegion)
		if err != nil {
			continue
		}
		// 号段未登记但长度成立的号码也收下，简历里常出现
		// 555这类示例号段；年份区间、编号在长度校验下就过不去
		if !phonenumbers.IsValidNumber(num) && !phonenumbers.IsPossibleNumber(num) {
			continue
		}
		formatted := phonenumbers.Format(num, phonenumbers.E164)
		if _, ok := seen[formatted]; ok {
			continue
		}
		seen[formatted] = struct{}{}
		phones = append(phones, formatted)
	}
	return phones
}

// MineSkills 提取技能列表：先定位技能区块，再对区块内的候选逐个
// 做词性过滤，最后按小写形式去重并保留首次出现的写法。
func (m *Miner) MineSkills(text string) []string {
	block := locateSkillsBlock(text)
	if block == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	skills := []string{}
	for _, candidate := range splitSkillCandidates(block) {
		ok, err := looksLikeSkill(candidate)
		if err != nil {
			logger.Warn().Err(err).Str("candidate", candidate).Msg("技能候选词性标注失败，跳过")
			continue
		}
		if !ok {
			continue
		}
		key := strings.ToLower(candidate)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		skills = append(skills, candidate)
	}
	return skills
}
