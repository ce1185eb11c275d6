package constants

// Standard response field keys
const (
	ResponseFieldSuccess = "success"
	ResponseFieldData    = "data"
	ResponseFieldError   = "error"
	ResponseFieldCode    = "code"
	ResponseFieldMessage = "message"
	ResponseFieldDetails = "details"
)

// BuildErrorResponse builds the uniform error envelope:
// {"success": false, "error": {"code": ..., "message": ..., "details": ...}}
func BuildErrorResponse(code, message string, details any) map[string]any {
	errBody := map[string]any{
		ResponseFieldCode:    code,
		ResponseFieldMessage: message,
	}
	if details != nil {
		errBody[ResponseFieldDetails] = details
	}

	return map[string]any{
		ResponseFieldSuccess: false,
		ResponseFieldError:   errBody,
	}
}

// BuildDataResponse wraps a payload in the success envelope.
func BuildDataResponse(data any) map[string]any {
	return map[string]any{
		ResponseFieldSuccess: true,
		ResponseFieldData:    data,
	}
}

// BuildSuccessResponse builds a success envelope carrying only a message.
func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldSuccess: true,
		ResponseFieldMessage: message,
	}
}
