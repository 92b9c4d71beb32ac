package models

// ErrorResponse is the JSON body returned on any handler error.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ListResponse wraps paginated list results.
type ListResponse struct {
	Items any `json:"items"`
	Total int `json:"total"`
}
