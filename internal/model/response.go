package model

// APIResponse is the envelope of every JSON body the API writes. RequestID
// echoes the X-Request-ID header so a failed trash action can be matched to
// its log line.
type APIResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Meta      *Meta     `json:"meta,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Meta describes a listing. Paged listings (audit) fill the page fields;
// the trash listing is unpaged and reports counts per record type instead.
type Meta struct {
	Page       int                  `json:"page,omitempty"`
	Limit      int                  `json:"limit,omitempty"`
	Total      int                  `json:"total"`
	TotalPages int                  `json:"total_pages,omitempty"`
	Types      map[OriginalType]int `json:"types,omitempty"`
}

func ErrorResponse(code string, message string) APIResponse {
	return APIResponse{Success: false, Error: &APIError{Code: code, Message: message}}
}
