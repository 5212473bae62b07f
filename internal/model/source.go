package model

// TrustedSource is an authenticated uploading application. The registry
// keys it by a SHA-512 hash of its API key; plaintext keys are never stored.
type TrustedSource struct {
	APIKeyHash  string `json:"-"`
	Name        string `json:"name"`
	UploadCount int64  `json:"upload_count"`
}
