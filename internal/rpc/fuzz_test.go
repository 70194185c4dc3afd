package rpc

import (
	"encoding/json"
	"testing"
)

// FuzzRPCRequestUnmarshal tests that arbitrary JSON does not panic
// when parsed as a JSON-RPC 2.0 request.
func FuzzRPCRequestUnmarshal(f *testing.F) {
	f.Add([]byte(`{"jsonrpc":"2.0","method":"get_info","params":null,"id":1}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"get_balance","params":{"token_id":"abc","account":{"owner":"0a"}},"id":"test"}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"transfer","params":{"caller":"0a","token_id":"ff","to":{"owner":"0b"},"amount":"100"},"id":2}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{"method":"","params":[]}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"get_transactions","params":[1,2,3],"id":999}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		_ = req.Method
		_ = req.ID
	})
}
