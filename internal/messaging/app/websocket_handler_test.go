package app

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingWriter struct {
	active  int32
	overlap int32
	total   int32
}

func (w *countingWriter) WriteMessage(messageType int, data []byte) error {
	if atomic.AddInt32(&w.active, 1) > 1 {
		atomic.StoreInt32(&w.overlap, 1)
	}
	atomic.AddInt32(&w.total, 1)
	atomic.AddInt32(&w.active, -1)
	return nil
}

// 測試同一條連線的並發寫入 (read loop 回覆、feed 推播、ping) 逐筆序列化
func TestWSWriter_SerializesConcurrentWrites(t *testing.T) {
	fake := &countingWriter{}
	writer := &wsWriter{conn: fake}

	var wg sync.WaitGroup
	const writers = 16
	const perWriter = 50

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				assert.NoError(t, writer.WriteMessage(1, []byte("payload")))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&fake.overlap))
	assert.Equal(t, int32(writers*perWriter), atomic.LoadInt32(&fake.total))
}
