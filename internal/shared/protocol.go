package shared

import "encoding/json"

const (
	KeyPath      = "/api/gemini-key"
	MaxKeyLength = 256
)

// KeyResponse is the body of a successful fetch.
type KeyResponse struct {
	Key string `json:"key"`
}

// KeyRequest is the body of a store request. Key stays raw so the handler can
// tell a missing field or a non-string value apart from a string.
type KeyRequest struct {
	Key json.RawMessage `json:"key"`
}

// StoredKeyRecord is the on-disk layout of the file backend.
type StoredKeyRecord struct {
	Key string `json:"key"`
}
