// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"

	// 评估相关错误
	ErrorSpeakerInvalid = "SPEAKER_INVALID"
	ErrorResponseEmpty  = "RESPONSE_EMPTY"

	// 场景相关错误
	ErrorSceneInvalid = "SCENE_INVALID"

	// 事实检索相关错误
	ErrorRAGDisabled = "RAG_DISABLED"

	// LLM服务相关错误
	ErrorLLMServiceUnavailable = "LLM_SERVICE_UNAVAILABLE"
)
