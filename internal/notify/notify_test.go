package notify

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRecorderKeepsMostRecent(t *testing.T) {
	r := NewRecorder(3)
	for i := 1; i <= 5; i++ {
		r.Info(fmt.Sprintf("msg %d", i))
	}
	r.Warn("last")

	assert.Equal(t, []string{"msg 4", "msg 5", "last"}, r.Messages())
	entries := r.Entries()
	assert.Equal(t, "info", entries[0].Channel)
	assert.Equal(t, "warn", entries[2].Channel)
}

func TestLogSinkAndMulti(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	rec := NewRecorder(0)
	sink := Multi{NewLogSink(logger), rec, Discard{}}
	sink.Info("updating hosts")
	sink.Warn("flush failed")

	assert.Contains(t, buf.String(), `level=info msg="updating hosts"`)
	assert.Contains(t, buf.String(), `level=warning msg="flush failed"`)
	assert.Equal(t, []string{"updating hosts", "flush failed"}, rec.Messages())
}
