package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSONOutsideLocal(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer

	log := NewWithOutput(&buf).Component("dataset.loader")
	log.WithError(errors.New("boom")).Debug("load failed")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "enforcement-insights-go", line["service"])
	assert.Equal(t, "dataset.loader", line["component"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "load failed", line["msg"])
}

func TestWithRequest(t *testing.T) {
	log := NewWithOutput(&bytes.Buffer{})

	r := httptest.NewRequest("GET", "/views/detection-method", nil)
	r.Header.Set("X-Request-ID", "abc")
	entry := log.WithRequest(r)
	assert.Equal(t, "abc", entry.Data["req_id"])
	assert.Equal(t, "/views/detection-method", entry.Data["path"])

	fresh := log.WithRequest(httptest.NewRequest("GET", "/healthz", nil))
	assert.Len(t, fresh.Data["req_id"], 36)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, parseLevel("warn"))
	assert.Equal(t, logrus.InfoLevel, parseLevel(""))
}
