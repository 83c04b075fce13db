package response

type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

func ErrorResponseWithDetails(err, details string) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Error:   err,
		Details: details,
	}
}

// ProbeEntry журнал разрешения одной категории
type ProbeEntry struct {
	Category string      `json:"category"`
	Kind     string      `json:"kind,omitempty"`
	Source   string      `json:"source,omitempty"`
	Attempts interface{} `json:"attempts"`
	Error    string      `json:"error,omitempty"`
}

type Health struct {
	Status string `json:"status"`
	Mode   string `json:"mode,omitempty"`
}
