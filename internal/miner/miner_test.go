package miner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMineEmailsDeduplicates(t *testing.T) {
	m := New("US")

	text := "联系方式: jane.doe@example.com\n备用: jane.doe@example.com, hr+intake@corp.io"
	emails := m.MineEmails(text)

	assert.Equal(t, []string{"jane.doe@example.com", "hr+intake@corp.io"}, emails)

	// 重复挖掘结果一致
	assert.Equal(t, emails, m.MineEmails(text))
}

func TestMineEmailsDeduplicatesCaseInsensitively(t *testing.T) {
	m := New("US")

	emails := m.MineEmails("Contact: Jane.Doe@Example.com or jane.doe@example.com")

	// 同一地址的不同大小写写法只算一个，保留首次出现的写法
	assert.Equal(t, []string{"Jane.Doe@Example.com"}, emails)
}

func TestMineEmailsNoMatches(t *testing.T) {
	m := New("US")
	assert.Empty(t, m.MineEmails("没有邮箱的文本 @ example"))
}

func TestMinePhonesCollapsesEquivalentForms(t *testing.T) {
	m := New("US")

	text := "Call me at (212) 555-0199 or +1 212 555 0199."
	phones := m.MinePhones(text)

	assert.Equal(t, []string{"+12125550199"}, phones)
}

func TestMinePhonesSkipsUnresolvableWithoutRegion(t *testing.T) {
	m := New("")

	// 没有默认地区时，不带国际区号的号码无法确定归属，静默跳过
	assert.Empty(t, m.MinePhones("Phone: 212 555 0199"))

	// 带国际区号的号码不受影响
	assert.Equal(t, []string{"+12125550199"}, m.MinePhones("Phone: +1 212 555 0199"))
}

func TestMinePhonesAcceptsUnassignedButPossibleNumbers(t *testing.T) {
	m := New("US")

	// 555-123-XXXX这类号段在号码库元数据里未登记为有效，
	// 但长度成立，简历里的联系电话不应因此丢失
	phones := m.MinePhones("Contact: a@b.com, +1 555-123-4567")

	assert.Equal(t, []string{"+15551234567"}, phones)
}

func TestMinePhonesSkipsInvalidCandidates(t *testing.T) {
	m := New("US")

	// 年份区间等数字片段不是有效号码，不应误报
	assert.Empty(t, m.MinePhones("2019-2022 在职，项目编号 12345678"))
}

func TestLocateSkillsBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "规范标题后跟区块",
			text: "Jane Doe\n\nTechnical Skills:\nPython, SQL\nKubernetes\n\nOther",
			want: "Python, SQL Kubernetes",
		},
		{
			name: "区块止于大写标题行",
			text: "Skills\nPython, SQL\nEDUCATION\nMIT",
			want: "Python, SQL",
		},
		{
			name: "规范标题优先于子串回退",
			text: "My skills include many things\nnot this\n\nSkills:\nPython",
			want: "Python",
		},
		{
			name: "无规范标题时回退到子串匹配",
			text: "Core skills overview\nPython, SQL\n\nrest",
			want: "Python, SQL",
		},
		{
			name: "没有技能标题",
			text: "Jane Doe\nSoftware Engineer\n",
			want: "",
		},
		{
			name: "标题后紧跟空行",
			text: "Skills:\n\nPython",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, locateSkillsBlock(tt.text))
		})
	}
}

func TestSplitSkillCandidates(t *testing.T) {
	block := "Python, Distributed Systems • SQL; Kubernetes •  ,  "
	candidates := splitSkillCandidates(block)
	assert.Equal(t, []string{"Python", "Distributed Systems", "SQL", "Kubernetes"}, candidates)
}

func TestMineSkillsFiltersNarrativeEntries(t *testing.T) {
	m := New("US")

	text := "Jane Doe\n\nSkills:\nPython, Leadership, Went to market\n\nEDUCATION"
	skills := m.MineSkills(text)

	assert.Contains(t, skills, "Python")
	assert.Contains(t, skills, "Leadership")
	assert.NotContains(t, skills, "Went to market")
}

func TestMineSkillsDeduplicatesCaseInsensitively(t *testing.T) {
	m := New("US")

	text := "Skills:\nJava, java, Python"
	skills := m.MineSkills(text)

	assert.Equal(t, []string{"Java", "Python"}, skills)
}

func TestMineSkillsEmptyBlock(t *testing.T) {
	m := New("US")
	assert.Empty(t, m.MineSkills("没有技能区块的简历文本"))
}

func TestMineCombinesAllPaths(t *testing.T) {
	m := New("US")

	text := "Jane Doe\njane@example.com\n(212) 555-0199\n\nSkills:\nPython, SQL\n"
	entities := m.Mine(text)

	require.Equal(t, []string{"jane@example.com"}, entities.Emails)
	require.Equal(t, []string{"+12125550199"}, entities.Phones)
	assert.Contains(t, entities.Skills, "Python")
}
