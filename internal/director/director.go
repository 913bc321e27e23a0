// internal/director/director.go
package director

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Corphon/DuoTalkDirector/internal/checks"
	"github.com/Corphon/DuoTalkDirector/internal/config"
	"github.com/Corphon/DuoTalkDirector/internal/llm"
	"github.com/Corphon/DuoTalkDirector/internal/models"
	"github.com/Corphon/DuoTalkDirector/internal/rag"
)

// Mode 评估策略
type Mode string

const (
	ModeStatic Mode = "static" // 仅静态检查
	ModeLLM    Mode = "llm"    // 仅 LLM 评分
	ModeHybrid Mode = "hybrid" // 静态优先 + LLM 兜底
)

// ParseMode 解析策略名，未知值回退 hybrid
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(s)) {
	case ModeStatic:
		return ModeStatic
	case ModeLLM:
		return ModeLLM
	default:
		return ModeHybrid
	}
}

// Output 标记后的正文提取
var outputMarkerPattern = regexp.MustCompile(`(?is)output:\s*(.*)$`)

// ExtractOutput 提取 Thought/Output 结构中的对外发言部分
// 没有标记时返回全文
func ExtractOutput(response string) string {
	if m := outputMarkerPattern.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return response
}

// acceptedTurn 被采纳发言的记录（新颖度追踪用）
type acceptedTurn struct {
	Response   string
	Evaluation models.Evaluation
}

// Options Director 配置
type Options struct {
	Mode                 Mode
	Thresholds           config.ThresholdConfig
	SkipLLMOnStaticRetry bool
	RAGEnabled           bool
	InjectEnabled        bool
}

// Director 对话质量评估编排器
//
// 三种策略共用一个实现: static 只跑静态套件，llm 只跑评分器，
// hybrid 先静态后 LLM 再合并。合并与建议构造逻辑只存在一份。
// 内部用互斥锁串行化，一次只处理一条评估。
type Director struct {
	mode  Mode
	suite *checks.StaticCheckSuite

	scorer     *llm.Scorer
	thresholds config.ThresholdConfig

	facts         *rag.FactStore
	ragEnabled    bool
	injectEnabled bool

	skipLLMOnStaticRetry bool

	mu            sync.Mutex
	history       []acceptedTurn
	ragAttempts   []rag.RAGLogEntry
	lastInjection *models.InjectionDecision
}

// New 创建 Director
//
// scorer 在 static 模式下可为 nil；facts 为 nil 时禁用事实检索。
func New(suite *checks.StaticCheckSuite, scorer *llm.Scorer, facts *rag.FactStore, opts Options) *Director {
	ragEnabled := opts.RAGEnabled && facts != nil
	return &Director{
		mode:                 opts.Mode,
		suite:                suite,
		scorer:               scorer,
		thresholds:           opts.Thresholds,
		facts:                facts,
		ragEnabled:           ragEnabled,
		injectEnabled:        opts.InjectEnabled,
		skipLLMOnStaticRetry: opts.SkipLLMOnStaticRetry,
	}
}

// Mode 当前策略
func (d *Director) Mode() Mode {
	return d.mode
}

// FactStore 暴露事实库（供 API 层更新场景/道具）
func (d *Director) FactStore() *rag.FactStore {
	return d.facts
}

// LLMAvailable LLM 评分后端当前是否可用
func (d *Director) LLMAvailable(ctx context.Context) bool {
	return d.scorer != nil && d.scorer.Available(ctx)
}

// Evaluate 评估一条候选发言
func (d *Director) Evaluate(ctx context.Context, speaker, response, topic string, history []models.Turn, turnNumber int) models.Evaluation {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.mode {
	case ModeStatic:
		return d.suite.Evaluate(speaker, response, history)
	case ModeLLM:
		eval, err := d.llmEvaluate(ctx, speaker, response, history)
		if err != nil {
			// 评分失败降级为 WARN，不阻断对话
			return models.Evaluation{
				Status:       models.StatusWarn,
				Reason:       fmt.Sprintf("[WARN] LLM evaluation error: %v", err),
				Suggestion:   "LLM評価が失敗しました。手動確認を推奨します。",
				ChecksFailed: []string{"llm_evaluation"},
			}
		}
		return eval
	default:
		return d.hybridEvaluate(ctx, speaker, response, history)
	}
}

// llmEvaluate LLM 评分策略
func (d *Director) llmEvaluate(ctx context.Context, speaker, response string, history []models.Turn) (models.Evaluation, error) {
	if d.scorer == nil {
		return models.Evaluation{}, fmt.Errorf("LLM scorer not configured")
	}
	if !d.scorer.Available(ctx) {
		return models.Evaluation{}, fmt.Errorf("LLM backend unavailable")
	}

	outputText := ExtractOutput(response)
	score := d.scorer.EvaluateSingleTurn(ctx, speaker, outputText, history)

	status := config.DetermineStatus(score, d.thresholds)
	eval := models.Evaluation{
		Status:     status,
		Reason:     config.BuildReason(score, status),
		Suggestion: buildSuggestion(score, status),
		Score:      &score,
	}
	if status == models.StatusRetry {
		eval.ChecksFailed = []string{"llm_evaluation"}
	} else {
		eval.ChecksPassed = []string{"llm_evaluation"}
	}
	return eval, nil
}

// hybridEvaluate 静态优先 + LLM 兜底策略
func (d *Director) hybridEvaluate(ctx context.Context, speaker, response string, history []models.Turn) models.Evaluation {
	// 无论是否短路，每次调用都做一次事实检索（纯观测用途）
	ragLog := d.observeRAG(speaker, response)

	staticResult := d.suite.Evaluate(speaker, response, history)

	// 结构已经失败的发言不值得再花一次 LLM 调用
	if staticResult.Status == models.StatusRetry && d.skipLLMOnStaticRetry {
		return d.attachRAGSummary(staticResult, ragLog)
	}

	llmResult, err := d.llmEvaluate(ctx, speaker, response, history)
	if err != nil {
		fallback := staticResult
		fallback.Reason = fmt.Sprintf("%s [LLM unavailable: %v]", staticResult.Reason, err)
		fallback.ChecksFailed = append(append([]string{}, staticResult.ChecksFailed...), "llm_evaluation")
		return d.attachRAGSummary(fallback, ragLog)
	}

	merged := mergeResults(staticResult, llmResult)
	return d.attachRAGSummary(merged, ragLog)
}

// mergeResults 合并静态与 LLM 的评估结论
//
// 取两者中更差的状态；passed/failed 列表拼接；
// 理由串带 [Static]/[LLM] 来源标记；建议优先用 LLM 的。
func mergeResults(static, llmEval models.Evaluation) models.Evaluation {
	var reasonParts []string
	if static.Reason != "" {
		reasonParts = append(reasonParts, "[Static] "+static.Reason)
	}
	if llmEval.Reason != "" {
		reasonParts = append(reasonParts, "[LLM] "+llmEval.Reason)
	}

	suggestion := llmEval.Suggestion
	if suggestion == "" {
		suggestion = static.Suggestion
	}

	return models.Evaluation{
		Status:       models.WorseOf(static.Status, llmEval.Status),
		Reason:       strings.Join(reasonParts, " "),
		Suggestion:   suggestion,
		ChecksPassed: append(append([]string{}, static.ChecksPassed...), llmEval.ChecksPassed...),
		ChecksFailed: append(append([]string{}, static.ChecksFailed...), llmEval.ChecksFailed...),
		Score:        llmEval.Score,
	}
}

// 各轴低分时的固定改善建议
var axisSuggestions = []struct {
	below   func(models.Score) float64
	message string
}{
	{func(s models.Score) float64 { return s.CharacterConsistency }, "キャラクターの一貫性を改善（口調、一人称）"},
	{func(s models.Score) float64 { return s.TopicNovelty }, "話題の繰り返しを避ける"},
	{func(s models.Score) float64 { return s.RelationshipQuality }, "姉妹らしい掛け合いを追加"},
	{func(s models.Score) float64 { return s.Naturalness }, "応答の自然さを改善"},
	{func(s models.Score) float64 { return s.Concreteness }, "具体的な情報を追加"},
}

// buildSuggestion 从低分轴和评分器报告的问题构造改善建议
//
// 低于0.5的轴各贡献一条固定短语，追加最多2条 issues，总共最多3条。
func buildSuggestion(score models.Score, status models.Status) string {
	if status == models.StatusPass {
		return ""
	}

	var suggestions []string
	for _, axis := range axisSuggestions {
		if axis.below(score) < 0.5 {
			suggestions = append(suggestions, axis.message)
		}
	}

	if len(score.Issues) > 0 {
		limit := 2
		if len(score.Issues) < limit {
			limit = len(score.Issues)
		}
		suggestions = append(suggestions, score.Issues[:limit]...)
	}

	if len(suggestions) == 0 {
		return ""
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return strings.Join(suggestions, "; ")
}

// Commit 记录被采纳的发言（新颖度追踪）
//
// static 模式无状态，本操作为空转。
func (d *Director) Commit(response string, evaluation models.Evaluation) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mode == ModeStatic {
		return
	}
	d.history = append(d.history, acceptedTurn{Response: response, Evaluation: evaluation})
}

// Reset 新会话开始时清空全部会话状态
func (d *Director) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.history = nil
	d.ragAttempts = nil
	d.lastInjection = nil
	if d.facts != nil {
		d.facts.ResetSession()
	}
}

// AcceptedCount 本会话已采纳的发言数
func (d *Director) AcceptedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history)
}
