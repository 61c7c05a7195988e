package processor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/types"
)

type fakeObjects struct {
	content      []byte
	err          error
	lastTempPath string
}

func (f *fakeObjects) DownloadToFile(_ context.Context, _ string, localPath string) error {
	f.lastTempPath = localPath
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(localPath, f.content, 0644)
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

type fakeMiner struct {
	entities types.MinedEntities
}

func (f *fakeMiner) Mine(_ string) types.MinedEntities {
	return f.entities
}

type fakeRecords struct {
	saved []*types.ResumeRecord
	err   error
}

func (f *fakeRecords) SaveResumeRecord(_ context.Context, record *types.ResumeRecord) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, record)
	return nil
}

type fakeIndex struct {
	indexed []*types.ResumeDocument
	err     error
}

func (f *fakeIndex) IndexResume(_ context.Context, doc *types.ResumeDocument) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, doc)
	return nil
}

type fakeQueue struct {
	exchange   string
	routingKey string
	payload    interface{}
	persistent bool
	publishErr error
}

func (f *fakeQueue) PublishJSON(_ context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error {
	f.exchange = exchangeName
	f.routingKey = routingKey
	f.payload = data
	f.persistent = persistent
	return f.publishErr
}

func (f *fakeQueue) StartConsumer(_ string, _ int, _ func([]byte) bool) (chan<- struct{}, error) {
	return make(chan struct{}), nil
}

func testTask() *types.IngestTask {
	return &types.IngestTask{
		ResumeID:   "r1",
		OwnerID:    "u1",
		ObjectKey:  "u1/r1.txt",
		FileName:   "resume.txt",
		UploadedAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestProcessor(t *testing.T, c Components) *Processor {
	t.Helper()
	p, err := NewProcessor(c, Settings{
		Exchange:   "resume.events.exchange",
		RoutingKey: "resume.uploaded",
		Queue:      "q.resume_ingest",
	})
	require.NoError(t, err)
	return p
}

func TestProcessTaskSuccess(t *testing.T) {
	objects := &fakeObjects{content: []byte("Contact: a@b.com")}
	records := &fakeRecords{}
	index := &fakeIndex{}
	p := newTestProcessor(t, Components{
		Extractor: &fakeExtractor{text: "Contact: a@b.com"},
		Miner: &fakeMiner{entities: types.MinedEntities{
			Emails: []string{"a@b.com"},
			Phones: []string{"+15551234567"},
			Skills: []string{"Python", "Docker"},
		}},
		Objects: objects,
		Records: records,
		Index:   index,
		Queue:   &fakeQueue{},
	})

	err := p.ProcessTask(context.Background(), testTask())
	require.NoError(t, err)

	require.Len(t, records.saved, 1)
	assert.Equal(t, "r1", records.saved[0].ResumeID)
	assert.Equal(t, []string{"a@b.com"}, records.saved[0].Emails)

	require.Len(t, index.indexed, 1)
	assert.Equal(t, "Contact: a@b.com", index.indexed[0].FullText)
	assert.Equal(t, []string{"Python", "Docker"}, index.indexed[0].Skills)

	// 临时文件已被清理
	assert.NoFileExists(t, objects.lastTempPath)
}

func TestProcessTaskPersistFailureCleansTempFile(t *testing.T) {
	objects := &fakeObjects{content: []byte("text")}
	index := &fakeIndex{}
	p := newTestProcessor(t, Components{
		Extractor: &fakeExtractor{text: "text"},
		Miner:     &fakeMiner{},
		Objects:   objects,
		Records:   &fakeRecords{err: errors.New("redis down")},
		Index:     index,
		Queue:     &fakeQueue{},
	})

	err := p.ProcessTask(context.Background(), testTask())
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Empty(t, index.indexed) // 持久化失败后不再写索引
	assert.NoFileExists(t, objects.lastTempPath)
}

func TestProcessTaskExtractFailureIsPermanent(t *testing.T) {
	records := &fakeRecords{}
	p := newTestProcessor(t, Components{
		Extractor: &fakeExtractor{err: errors.New("corrupt document")},
		Miner:     &fakeMiner{},
		Objects:   &fakeObjects{content: []byte("x")},
		Records:   records,
		Index:     &fakeIndex{},
		Queue:     &fakeQueue{},
	})

	err := p.ProcessTask(context.Background(), testTask())
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
	assert.Empty(t, records.saved) // 提取失败不留下部分记录

	var processErr *ProcessError
	require.True(t, errors.As(err, &processErr))
	assert.Equal(t, StageExtract, processErr.Stage)
}

func TestHandleDelivery(t *testing.T) {
	t.Run("非法JSON直接确认丢弃", func(t *testing.T) {
		p := newTestProcessor(t, Components{
			Extractor: &fakeExtractor{},
			Miner:     &fakeMiner{},
			Objects:   &fakeObjects{},
			Records:   &fakeRecords{},
			Index:     &fakeIndex{},
			Queue:     &fakeQueue{},
		})
		assert.True(t, p.handleDelivery([]byte("not json")))
	})

	t.Run("存储失败要求重新入队", func(t *testing.T) {
		p := newTestProcessor(t, Components{
			Extractor: &fakeExtractor{text: "x"},
			Miner:     &fakeMiner{},
			Objects:   &fakeObjects{err: errors.New("minio down")},
			Records:   &fakeRecords{},
			Index:     &fakeIndex{},
			Queue:     &fakeQueue{},
		})
		body, err := json.Marshal(testTask())
		require.NoError(t, err)
		assert.False(t, p.handleDelivery(body))
	})
}

func TestEnqueue(t *testing.T) {
	queue := &fakeQueue{}
	p := newTestProcessor(t, Components{
		Extractor: &fakeExtractor{},
		Miner:     &fakeMiner{},
		Objects:   &fakeObjects{},
		Records:   &fakeRecords{},
		Index:     &fakeIndex{},
		Queue:     queue,
	})

	task := testTask()
	require.NoError(t, p.Enqueue(context.Background(), task))
	assert.Equal(t, "resume.events.exchange", queue.exchange)
	assert.Equal(t, "resume.uploaded", queue.routingKey)
	assert.True(t, queue.persistent)
	assert.Equal(t, task, queue.payload)
}

func TestNewProcessorRequiresAllComponents(t *testing.T) {
	_, err := NewProcessor(Components{}, Settings{})
	assert.Error(t, err)
}
