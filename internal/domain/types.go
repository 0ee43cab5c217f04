package domain

// Response standardizes API responses. Success mirrors the upstream
// `success` flag so the dashboard front end handles both the same way.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Notice  *Notice     `json:"notice,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// NoticeLevel grades a non-fatal message shown next to a result.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is an informational message that accompanies a successful
// operation, e.g. when a requested tariff tier was substituted.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}
