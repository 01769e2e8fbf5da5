package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type payload struct {
	RunID string           `json:"run_id"`
	Loss  *int64           `json:"loss"`
	Map   map[string]int64 `json:"allocation"`
}

func TestWrite_DefaultsToJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	loss := int64(20000)
	require.NoError(t, Write(rec, req, http.StatusCreated, payload{RunID: "a", Loss: &loss}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"run_id":"a","loss":20000,"allocation":null}`, rec.Body.String())
}

func TestWrite_MsgpackUsesJSONNames(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html, application/msgpack;q=0.9")

	require.NoError(t, Write(rec, req, http.StatusOK, payload{RunID: "b", Map: map[string]int64{"monthly_savings": 800}}))

	assert.Equal(t, ContentTypeMsgpack, rec.Header().Get("Content-Type"))
	var decoded map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "b", decoded["run_id"])
	assert.Contains(t, decoded, "allocation")
	assert.Nil(t, decoded["loss"])
}

func TestWantsMsgpack(t *testing.T) {
	tests := []struct {
		accept string
		want   bool
	}{
		{"", false},
		{"application/json", false},
		{"application/msgpack", true},
		{"application/x-msgpack", true},
		{"*/*, application/msgpack; q=0.5", true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", tt.accept)
		assert.Equal(t, tt.want, WantsMsgpack(req), tt.accept)
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	require.NoError(t, Error(rec, req, http.StatusBadRequest, "bad input", map[string]string{"field": "scale"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad input", body.Error)
}

func TestDecode(t *testing.T) {
	t.Run("json keeps numbers exact", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"monthly_take_home": 4000}`))
		var v map[string]interface{}
		require.NoError(t, Decode(req, &v))
		assert.Equal(t, json.Number("4000"), v["monthly_take_home"])
	})

	t.Run("msgpack", func(t *testing.T) {
		raw, err := msgpack.Marshal(map[string]interface{}{"monthly_take_home": 4000})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
		req.Header.Set("Content-Type", ContentTypeMsgpack)

		var v map[string]interface{}
		require.NoError(t, Decode(req, &v))
		assert.EqualValues(t, 4000, v["monthly_take_home"])
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBuffer(nil))
		var v map[string]interface{}
		assert.Error(t, Decode(req, &v))
	})
}
