package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartLines(t *testing.T, body map[string]any) []any {
	t.Helper()
	c, ok := body["cart"].(map[string]any)
	require.True(t, ok, "missing cart in %v", body)
	lines, _ := c["lines"].([]any)
	return lines
}

func TestCartAddClampsAtStock(t *testing.T) {
	cl := newTestApp(t, 0).client(t)

	// Headphones: stock 5.
	resp, b := cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": 1, "qty": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))
	assert.Equal(t, "added", decode(t, b)["outcome"])
	require.NotEmpty(t, cl.sid)

	_, b = cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": 1, "qty": 4})
	body := decode(t, b)
	assert.Equal(t, "merged", body["outcome"])
	line := body["line"].(map[string]any)
	assert.EqualValues(t, 5, line["quantity"])

	_, b = cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": 1, "qty": 1})
	body = decode(t, b)
	assert.Equal(t, "noop", body["outcome"])
	lines := cartLines(t, body)
	require.Len(t, lines, 1)
	assert.Equal(t, true, lines[0].(map[string]any)["atLimit"])
}

func TestCartAddAcceptsFormAndStringNumbers(t *testing.T) {
	cl := newTestApp(t, 0).client(t)

	resp, b := cl.form(http.MethodPost, "/api/v1/cart", "productId=2&qty=1&size=L")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))
	line := decode(t, b)["line"].(map[string]any)
	assert.Equal(t, "L", line["size"])

	resp, b = cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": "2", "qty": "1", "size": "M"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))
	assert.Len(t, cartLines(t, decode(t, b)), 2)
}

func TestCartSizesShareStock(t *testing.T) {
	cl := newTestApp(t, 0).client(t)

	// Tee: stock 2 across sizes.
	cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": 2, "qty": 1, "size": "S"})
	_, b := cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": 2, "qty": 3, "size": "M"})
	body := decode(t, b)
	assert.EqualValues(t, 1, body["line"].(map[string]any)["quantity"])

	_, b = cl.do(http.MethodPatch, "/api/v1/cart", map[string]any{"productId": 2, "size": "S", "delta": 1})
	assert.Equal(t, "noop", decode(t, b)["outcome"])

	_, b = cl.do(http.MethodGet, "/api/v1/products/2", nil)
	stock := decode(t, b)["stock"].(map[string]any)
	assert.EqualValues(t, 2, stock["inCart"])
	assert.EqualValues(t, 0, stock["remaining"])
}

func TestCartDeltaRules(t *testing.T) {
	cl := newTestApp(t, 0).client(t)
	cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": 6, "qty": 1})

	// Decrement at 1 keeps the line.
	_, b := cl.do(http.MethodPatch, "/api/v1/cart", map[string]any{"productId": 6, "delta": -1})
	body := decode(t, b)
	assert.Equal(t, "noop", body["outcome"])
	assert.Len(t, cartLines(t, body), 1)

	_, b = cl.do(http.MethodPatch, "/api/v1/cart", map[string]any{"productId": 6, "delta": 2})
	body = decode(t, b)
	assert.Equal(t, "updated", body["outcome"])
	assert.EqualValues(t, 3, body["line"].(map[string]any)["quantity"])

	resp, _ := cl.do(http.MethodPatch, "/api/v1/cart", map[string]any{"productId": 6, "delta": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCartSetRemoveClear(t *testing.T) {
	cl := newTestApp(t, 0).client(t)
	cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": 5, "qty": 1, "size": "42"})
	cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": 3, "qty": 1})

	_, b := cl.do(http.MethodPut, "/api/v1/cart", map[string]any{"productId": 5, "size": "42", "qty": 9})
	body := decode(t, b)
	assert.Equal(t, "updated", body["outcome"])
	assert.EqualValues(t, 6, body["line"].(map[string]any)["quantity"])

	_, b = cl.do(http.MethodPut, "/api/v1/cart", map[string]any{"productId": 5, "size": "42", "qty": 0})
	assert.Equal(t, "removed", decode(t, b)["outcome"])

	_, b = cl.do(http.MethodDelete, "/api/v1/cart", map[string]any{"productId": 3})
	body = decode(t, b)
	assert.Equal(t, "removed", body["outcome"])
	assert.Empty(t, cartLines(t, body))

	_, b = cl.do(http.MethodPost, "/api/v1/cart/clear", nil)
	assert.Equal(t, "noop", decode(t, b)["outcome"])
}

func TestCartRejectsBadInput(t *testing.T) {
	cl := newTestApp(t, 0).client(t)
	cases := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"missing product", map[string]any{"qty": 1}, http.StatusBadRequest},
		{"negative product", map[string]any{"productId": -3}, http.StatusBadRequest},
		{"unknown product", map[string]any{"productId": 999}, http.StatusNotFound},
		{"markup size", map[string]any{"productId": 2, "size": "<b>"}, http.StatusBadRequest},
		{"unoffered size", map[string]any{"productId": 2, "size": "XXL"}, http.StatusBadRequest},
		{"zero qty", map[string]any{"productId": 1, "qty": 0}, http.StatusBadRequest},
		{"negative qty", map[string]any{"productId": 1, "qty": -3}, http.StatusBadRequest},
		{"text qty", map[string]any{"productId": 1, "qty": "abc"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, b := cl.do(http.MethodPost, "/api/v1/cart", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode, string(b))
			assert.Contains(t, decode(t, b), "error")
		})
	}

	// Nothing slipped into the cart.
	_, b := cl.do(http.MethodGet, "/api/v1/cart", nil)
	assert.Empty(t, decode(t, b)["lines"])
}

func TestCartAddWithoutQtyAddsOne(t *testing.T) {
	cl := newTestApp(t, 0).client(t)
	resp, b := cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))
	assert.EqualValues(t, 1, decode(t, b)["line"].(map[string]any)["quantity"])
}

func TestCartPersistsToBlob(t *testing.T) {
	ta := newTestApp(t, 0)
	cl := ta.client(t)
	cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": 1, "qty": 2})

	raw, err := ta.blobs.Get(context.Background(), "cart:"+cl.sid)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"productId":1`)
}

func TestCartAuditAndSecurityLogs(t *testing.T) {
	cl := newTestApp(t, 0).client(t)
	entries := captureLogs(t, func() {
		cl.do(http.MethodPost, "/api/v1/cart", map[string]any{"productId": 1, "qty": 1})
		cl.do(http.MethodPatch, "/api/v1/cart", map[string]any{"productId": 1, "delta": "x"})
	})

	audit, ok := findLog(entries, "audit", "cart.add")
	require.True(t, ok, "missing cart.add audit: %+v", entries)
	assert.Equal(t, "added", audit.Fields["outcome"])

	sec, ok := findLog(entries, "security", "validation.fail")
	require.True(t, ok, "missing validation.fail: %+v", entries)
	assert.Equal(t, "body", sec.Fields["field"])
}
