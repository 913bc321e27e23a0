// internal/api/handlers.go
package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Corphon/DuoTalkDirector/internal/checks"
	"github.com/Corphon/DuoTalkDirector/internal/director"
	"github.com/Corphon/DuoTalkDirector/internal/logging"
	"github.com/Corphon/DuoTalkDirector/internal/models"
	"github.com/Corphon/DuoTalkDirector/internal/rag"
	"github.com/Corphon/DuoTalkDirector/internal/state"
)

// Handler API处理器
type Handler struct {
	Director     *director.Director
	Sanitizer    *checks.ActionSanitizer
	Extractor    *state.Extractor
	SanitizerLog *logging.SanitizerLogger
	ThoughtLog   *logging.ThoughtLogger
	Hub          *Hub

	response *ResponseHelper
	logger   *zap.SugaredLogger
}

// NewHandler 创建API处理器
func NewHandler(
	d *director.Director,
	sanitizer *checks.ActionSanitizer,
	extractor *state.Extractor,
	sanitizerLog *logging.SanitizerLogger,
	thoughtLog *logging.ThoughtLogger,
	hub *Hub,
	logger *zap.SugaredLogger,
) *Handler {
	return &Handler{
		Director:     d,
		Sanitizer:    sanitizer,
		Extractor:    extractor,
		SanitizerLog: sanitizerLog,
		ThoughtLog:   thoughtLog,
		Hub:          hub,
		response:     NewResponseHelper(),
		logger:       logger,
	}
}

// EvaluateRequest 评估请求体
type EvaluateRequest struct {
	Speaker    string        `json:"speaker" binding:"required"`
	Response   string        `json:"response" binding:"required"`
	Topic      string        `json:"topic"`
	History    []models.Turn `json:"history"`
	TurnNumber int           `json:"turn_number"`
}

// EvaluateTurn 评估一条候选发言
func (h *Handler) EvaluateTurn(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.BadRequest(c, ErrorBadRequest, "リクエストの形式が不正です", err.Error())
		return
	}
	if !models.IsYana(req.Speaker) && !models.IsAyu(req.Speaker) {
		h.response.BadRequest(c, ErrorSpeakerInvalid, "未知の話者です: "+req.Speaker)
		return
	}
	if strings.TrimSpace(req.Response) == "" {
		h.response.BadRequest(c, ErrorResponseEmpty, "応答テキストが空です")
		return
	}

	speaker := models.CanonicalSpeaker(req.Speaker)
	evaluation := h.Director.Evaluate(c.Request.Context(), speaker, req.Response, req.Topic, req.History, req.TurnNumber)

	// 思考部分があれば状態抽出してログに残す
	var extracted *state.ExtractedState
	if thought := checks.ExtractThought(req.Response); thought != "" {
		st := h.Extractor.Extract(thought, speaker)
		extracted = &st
		if h.ThoughtLog != nil {
			h.ThoughtLog.LogThought(req.TurnNumber, speaker, thought, st)
		}
	}

	if h.Hub != nil {
		h.Hub.Broadcast("turn_evaluated", gin.H{
			"speaker":     speaker,
			"turn_number": req.TurnNumber,
			"status":      evaluation.Status,
			"reason":      evaluation.Reason,
		})
	}

	h.response.Success(c, gin.H{
		"evaluation":      evaluation,
		"extracted_state": extracted,
	})
}

// CommitRequest 采纳请求体
type CommitRequest struct {
	Response   string            `json:"response" binding:"required"`
	Evaluation models.Evaluation `json:"evaluation"`
	Topic      string            `json:"topic"`
}

// CommitTurn 记录被采纳的发言
func (h *Handler) CommitTurn(c *gin.Context) {
	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.BadRequest(c, ErrorBadRequest, "リクエストの形式が不正です", err.Error())
		return
	}

	h.Director.Commit(req.Response, req.Evaluation)
	if facts := h.Director.FactStore(); facts != nil && req.Topic != "" {
		facts.AddTopic(req.Topic)
	}
	h.Director.ClearRAGAttempts()

	h.response.Success(c, gin.H{
		"accepted_count": h.Director.AcceptedCount(),
	})
}

// ResetSession 清空会话状态
func (h *Handler) ResetSession(c *gin.Context) {
	h.Director.Reset()
	h.response.Success(c, nil, "セッションをリセットしました")
}

// SanitizeRequest 动作净化请求体
type SanitizeRequest struct {
	Speaker    string   `json:"speaker" binding:"required"`
	Text       string   `json:"text" binding:"required"`
	SceneItems []string `json:"scene_items"`
	TurnNumber int      `json:"turn_number"`
}

// SanitizeAction 净化发言中的小物动作
func (h *Handler) SanitizeAction(c *gin.Context) {
	var req SanitizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.BadRequest(c, ErrorBadRequest, "リクエストの形式が不正です", err.Error())
		return
	}

	speaker := models.CanonicalSpeaker(req.Speaker)
	result := h.Sanitizer.Sanitize(req.Text, req.SceneItems)

	if h.SanitizerLog != nil {
		h.SanitizerLog.LogSanitize(req.TurnNumber, speaker, result)
	}

	// 拦截的道具记入事实库，供后续检索和注入使用
	if facts := h.Director.FactStore(); facts != nil {
		for _, prop := range result.BlockedProps {
			facts.AddBlockedProp(prop)
		}
	}

	if h.Hub != nil && (result.ActionReplaced || result.ActionRemoved) {
		h.Hub.Broadcast("action_sanitized", gin.H{
			"speaker":         speaker,
			"blocked_props":   result.BlockedProps,
			"original_action": result.OriginalAction,
		})
	}

	h.response.Success(c, result)
}

// GetFacts 按说话者和候选文本检索事实
func (h *Handler) GetFacts(c *gin.Context) {
	facts := h.Director.FactStore()
	if facts == nil || !facts.Enabled() {
		h.response.BadRequest(c, ErrorRAGDisabled, "事実検索は無効化されています")
		return
	}

	speaker := models.CanonicalSpeaker(c.Query("speaker"))
	text := c.Query("text")
	if !models.IsYana(speaker) && !models.IsAyu(speaker) {
		h.response.BadRequest(c, ErrorSpeakerInvalid, "未知の話者です: "+speaker)
		return
	}

	result := facts.Search(speaker, text)
	h.response.Success(c, facts.ToLogEntry(result))
}

// UpdateScene 整体替换场景上下文
func (h *Handler) UpdateScene(c *gin.Context) {
	facts := h.Director.FactStore()
	if facts == nil {
		h.response.BadRequest(c, ErrorRAGDisabled, "事実検索は無効化されています")
		return
	}

	var scene rag.SceneContext
	if err := c.ShouldBindJSON(&scene); err != nil {
		h.response.BadRequest(c, ErrorSceneInvalid, "シーン情報の形式が不正です", err.Error())
		return
	}

	facts.SetSceneContext(scene)
	h.response.Success(c, scene, "シーンを更新しました")
}

// InjectionRequest 注入事实组装请求体
type InjectionRequest struct {
	Speaker      string `json:"speaker" binding:"required"`
	ResponseText string `json:"response_text"`
	Topic        string `json:"topic"`
}

// BuildInjection 为下一条提示组装注入事实
func (h *Handler) BuildInjection(c *gin.Context) {
	var req InjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.BadRequest(c, ErrorBadRequest, "リクエストの形式が不正です", err.Error())
		return
	}

	speaker := models.CanonicalSpeaker(req.Speaker)
	facts := h.Director.FactsForInjection(speaker, req.ResponseText, req.Topic)

	h.response.Success(c, gin.H{
		"facts":    facts,
		"decision": h.Director.LastInjectionDecision(),
	})
}

// GetLastInjection 最近一次注入判定
func (h *Handler) GetLastInjection(c *gin.Context) {
	decision := h.Director.LastInjectionDecision()
	if decision == nil {
		h.response.NotFound(c, "注入判定はまだありません")
		return
	}
	h.response.Success(c, decision)
}

// GetSanitizerStats 净化统计
func (h *Handler) GetSanitizerStats(c *gin.Context) {
	if h.SanitizerLog == nil {
		h.response.NotFound(c, "サニタイザーログは無効化されています")
		return
	}
	h.response.Success(c, gin.H{
		"prop_frequency": h.SanitizerLog.PropFrequency(),
		"by_speaker":     h.SanitizerLog.SpeakerStats(),
	})
}

// GetLLMStatus LLM 评分后端可用性检查
func (h *Handler) GetLLMStatus(c *gin.Context) {
	if !h.Director.LLMAvailable(c.Request.Context()) {
		h.response.ServiceUnavailable(c, ErrorLLMServiceUnavailable, "LLM採点サービスは利用できません")
		return
	}
	h.response.Success(c, gin.H{
		"available": true,
		"mode":      h.Director.Mode(),
	})
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	clients := 0
	if h.Hub != nil {
		clients = h.Hub.ClientCount()
	}
	c.JSON(200, gin.H{
		"status":            "ok",
		"mode":              h.Director.Mode(),
		"websocket_clients": clients,
	})
}
