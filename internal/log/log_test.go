package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "storefront/internal/log"
)

func TestEntriesAreJSONWithAction(t *testing.T) {
	var buf bytes.Buffer
	restore := applog.SetOutput(&buf)
	defer restore()

	applog.Audit(nil, "cart.add", map[string]any{"product_id": 3})
	applog.Error(nil, "cart.persist.fail", errors.New("disk full"), nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "cart.add", first["action"])
	assert.Equal(t, "audit", first["kind"])
	assert.Equal(t, "info", first["level"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "error", second["level"])
	assert.Equal(t, "disk full", second["error"])
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, "info", applog.ParseLevel("").String())
	assert.Equal(t, "info", applog.ParseLevel("loud").String())
	assert.Equal(t, "debug", applog.ParseLevel(" DEBUG ").String())
}
