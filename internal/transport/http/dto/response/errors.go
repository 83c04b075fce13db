package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrAdminDisabled = ErrorResponse{
		Status:  "error",
		Error:   "admin_disabled",
		Details: "Admin access is not configured",
	}

	ErrNotConfigured = ErrorResponse{
		Status:  "error",
		Error:   "backend_not_configured",
		Details: "Content backend is not configured",
	}

	ErrUnknownCategory = ErrorResponse{
		Status: "error",
		Error:  "unknown_category",
	}

	ErrNoValidSource = ErrorResponse{
		Status: "error",
		Error:  "no_valid_source",
	}

	ErrSourceFailed = ErrorResponse{
		Status: "error",
		Error:  "source_error",
	}

	ErrDataUnavailable = ErrorResponse{
		Status: "error",
		Error:  "data_unavailable",
	}

	ErrInternal = ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Details: "Internal server error",
	}
)

// WithDetails копия ошибки с деталями; общие значения пакета не меняются
func (e ErrorResponse) WithDetails(details string) ErrorResponse {
	e.Details = details
	return e
}
