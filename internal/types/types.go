package types

import "time"

// ResumeRecord 一次摄取完成后持久化的简历记录。
// 记录一经写入即视为不可变，重新上传同一文件会生成新的记录。
type ResumeRecord struct {
	ResumeID   string    `json:"resume_id"`           // 简历唯一标识 (UUIDv7)
	OwnerID    string    `json:"owner_id"`            // 上传者标识
	ObjectKey  string    `json:"object_key"`          // 原始文件在对象存储中的键
	FileName   string    `json:"file_name"`           // 上传时的原始文件名
	Emails     []string  `json:"emails"`              // 挖掘出的邮箱地址，按首次出现顺序
	Phones     []string  `json:"phones"`              // 挖掘出的电话号码，E.164格式
	Skills     []string  `json:"skills"`              // 挖掘出的技能列表
	FullText   string    `json:"full_text,omitempty"` // 提取出的完整纯文本
	UploadedAt time.Time `json:"uploaded_at"`         // 摄取完成时间 (UTC)
}

// MinedEntities 从简历纯文本中挖掘出的实体集合
type MinedEntities struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
	Skills []string `json:"skills"`
}

// IngestTask 上传接口发布到消息队列的摄取任务
type IngestTask struct {
	ResumeID   string    `json:"resume_id"`
	OwnerID    string    `json:"owner_id"`
	ObjectKey  string    `json:"object_key"`
	FileName   string    `json:"file_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ResumeDocument 写入搜索索引的简历文档。除参与检索的字段外，
// 同时冗余一份挖掘实体，避免搜索结果再回查记录存储。
type ResumeDocument struct {
	ResumeID  string   `json:"resume_id"`
	OwnerID   string   `json:"owner_id"`
	ObjectKey string   `json:"object_key"`
	FileName  string   `json:"file_name"`
	Emails    []string `json:"emails"`
	Phones    []string `json:"phones"`
	Skills    []string `json:"skills"`
	FullText  string   `json:"full_text"`
}

// SemanticMatchResult 查询文本与单份简历的语义匹配结果。
// 关键词字段来自静态词表的粗粒度命中，与词性过滤出的技能列表
// 是两条独立的数据路径。
type SemanticMatchResult struct {
	Score           float64  `json:"score"`            // 余弦相似度，保留两位小数
	ResumeKeywords  []string `json:"resume_keywords"`  // 简历文本命中的词表关键词
	QueryKeywords   []string `json:"query_keywords"`   // 查询文本命中的词表关键词
	OverlapKeywords []string `json:"overlap_keywords"` // 双方共同命中的关键词
}

// IndexHit 搜索索引返回的单条命中，携带索引评分
type IndexHit struct {
	Document ResumeDocument `json:"document"`
	Score    float64        `json:"score"`
}

// SearchHit 简历库搜索对外返回的单条结果
type SearchHit struct {
	ResumeID    string   `json:"resume_id"`
	OwnerID     string   `json:"owner_id"`
	FileName    string   `json:"file_name"`
	Score       float64  `json:"score"`
	Emails      []string `json:"emails"`
	Phones      []string `json:"phones"`
	Skills      []string `json:"skills"`
	DownloadURL string   `json:"download_url"` // 原始文件的限时下载链接，10分钟内有效
}
