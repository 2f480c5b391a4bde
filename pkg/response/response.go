// Package response defines the envelope every handler returns, so API
// consumers can switch on status without inspecting HTTP details.
package response

type Response struct {
	Status     string      `json:"status"` // "success" or "error"
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success wraps data in the envelope.
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error wraps an error message in the envelope.
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}
