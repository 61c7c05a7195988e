package processor

import (
	"errors"
	"fmt"
)

// ErrStorage 对象存储或记录存储操作失败。
// 存储写入按resume_id幂等，此类失败可以安全重试。
var ErrStorage = errors.New("存储操作失败")

// 摄取流水线的阶段名，用于错误定位和日志
const (
	StageDownload = "download"
	StageExtract  = "extract"
	StageMine     = "mine"
	StagePersist  = "persist"
	StageIndex    = "index"
)

// ProcessError 摄取单元内某个阶段的失败，携带简历ID与失败阶段
type ProcessError struct {
	ResumeID string
	Stage    string
	Err      error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("简历摄取失败 (resume_id=%s, stage=%s): %v", e.ResumeID, e.Stage, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// NewProcessError 包装阶段错误
func NewProcessError(resumeID, stage string, err error) *ProcessError {
	return &ProcessError{ResumeID: resumeID, Stage: stage, Err: err}
}

// NewStorageError 包装存储类阶段错误，可通过errors.Is(err, ErrStorage)识别
func NewStorageError(resumeID, stage string, err error) *ProcessError {
	return &ProcessError{ResumeID: resumeID, Stage: stage, Err: fmt.Errorf("%w: %v", ErrStorage, err)}
}
