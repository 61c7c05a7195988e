package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/config"
)

func TestContentTypeForFile(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"resume.pdf", "application/pdf"},
		{"Resume.PDF", "application/pdf"},
		{"resume.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"resume.txt", "text/plain"},
		{"resume", "application/octet-stream"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, contentTypeForFile(tt.fileName), tt.fileName)
	}
}

func TestVectorCacheKey(t *testing.T) {
	key := vectorCacheKey("python engineer")

	assert.True(t, strings.HasPrefix(key, vectorCacheKeyPrefix))
	assert.Equal(t, key, vectorCacheKey("python engineer"))    // 同文本同键
	assert.NotEqual(t, key, vectorCacheKey("golang engineer")) // 不同文本不同键
	assert.Less(t, len(key), 100, "键长度不随文本长度增长")
}

func TestStartConsumerStopDeregistersConsumer(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.RabbitMQ.MaxRetries = 0 // 本地无服务时快速跳过

	mq, err := NewRabbitMQ(&cfg.RabbitMQ)
	if err != nil {
		t.Skipf("RabbitMQ不可用，跳过: %v", err)
	}
	defer mq.Close()

	ch, err := mq.conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)

	stop, err := mq.StartConsumer(q.Name, 1, func([]byte) bool { return true })
	require.NoError(t, err)

	consumerCount := func() int {
		state, err := ch.QueueDeclarePassive(q.Name, false, true, true, false, nil)
		require.NoError(t, err)
		return state.Consumers
	}

	require.Eventually(t, func() bool { return consumerCount() == 1 },
		2*time.Second, 50*time.Millisecond)

	stop <- struct{}{}

	// 停止后消费者注册被注销，预取的投递不会再流向已退出的协程
	require.Eventually(t, func() bool { return consumerCount() == 0 },
		2*time.Second, 50*time.Millisecond)
}
