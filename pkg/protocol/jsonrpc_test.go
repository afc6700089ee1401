package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	t.Run("with params", func(t *testing.T) {
		req, err := NewRequest(1, MethodInitialize, InitializeParams{
			ProtocolVersion: ProtocolRevision,
			Capabilities: Capabilities{
				Roots:     Capability{ListChanged: true},
				Resources: Capability{ListChanged: true},
			},
			ClientInfo: ClientInfo{Name: "kite-advisor", Version: "1.0.0"},
		})
		require.NoError(t, err)

		assert.Equal(t, JSONRPCVersion, req.JSONRPC)
		assert.Equal(t, int64(1), req.ID)
		assert.Equal(t, MethodInitialize, req.Method)

		var params InitializeParams
		require.NoError(t, json.Unmarshal(req.Params, &params))
		assert.Equal(t, ProtocolRevision, params.ProtocolVersion)
		assert.True(t, params.Capabilities.Roots.ListChanged)
		assert.True(t, params.Capabilities.Resources.ListChanged)
	})

	t.Run("nil params omitted", func(t *testing.T) {
		req, err := NewRequest(2, MethodCallTool, nil)
		require.NoError(t, err)

		data, err := json.Marshal(req)
		require.NoError(t, err)
		assert.NotContains(t, string(data), `"params"`)
	})

	t.Run("unmarshalable params", func(t *testing.T) {
		_, err := NewRequest(3, MethodCallTool, func() {})
		assert.Error(t, err)
	})
}

func TestRequestWireShape(t *testing.T) {
	req, err := NewRequest(7, MethodCallTool, CallToolParams{
		Name:      ToolLogin,
		Arguments: map[string]interface{}{},
	})
	require.NoError(t, err)

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2.0", decoded["jsonrpc"])
	assert.Equal(t, float64(7), decoded["id"])
	assert.Equal(t, "tools/call", decoded["method"])

	params, ok := decoded["params"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "login", params["name"])
}

func TestResponseDecoding(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var resp Response
		require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`), &resp))
		assert.Nil(t, resp.Error)
		assert.JSONEq(t, `{"ok":true}`, string(resp.Result))
	})

	t.Run("error", func(t *testing.T) {
		var resp Response
		require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"no such method"}}`), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, MethodNotFound, resp.Error.Code)
		assert.Contains(t, resp.Error.Error(), "no such method")
	})
}

func TestParseToolResult(t *testing.T) {
	t.Run("bare result", func(t *testing.T) {
		result, err := ParseToolResult(json.RawMessage(`{"content":[{"type":"text","text":"hello"}]}`))
		require.NoError(t, err)
		text, ok := result.FirstText()
		assert.True(t, ok)
		assert.Equal(t, "hello", text)
	})

	t.Run("wrapped result", func(t *testing.T) {
		result, err := ParseToolResult(json.RawMessage(`{"result":{"content":[{"text":"wrapped"}]}}`))
		require.NoError(t, err)
		text, ok := result.FirstText()
		assert.True(t, ok)
		assert.Equal(t, "wrapped", text)
	})

	t.Run("empty content", func(t *testing.T) {
		result, err := ParseToolResult(json.RawMessage(`{"content":[]}`))
		require.NoError(t, err)
		_, ok := result.FirstText()
		assert.False(t, ok)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseToolResult(json.RawMessage(`not json`))
		assert.Error(t, err)
	})
}
