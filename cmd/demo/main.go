// cmd/demo/main.go
//
// 不依赖 LLM 的离线演示: 静态检查、动作净化、事实检索和注入判定
// 跑一段固定的姉妹对话并打印每轮的裁定。
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/Corphon/DuoTalkDirector/internal/checks"
	"github.com/Corphon/DuoTalkDirector/internal/config"
	"github.com/Corphon/DuoTalkDirector/internal/director"
	"github.com/Corphon/DuoTalkDirector/internal/models"
	"github.com/Corphon/DuoTalkDirector/internal/rag"
	"github.com/Corphon/DuoTalkDirector/internal/state"
)

type demoTurn struct {
	speaker  string
	response string
}

var demoTurns = []demoTurn{
	{models.SpeakerYana, "Thought: (やな: 映画の話、あゆも乗ってきそう)\nOutput: 「ねえあゆ、昨日の映画さ、ラストどう思った？」"},
	{models.SpeakerAyu, "Thought: (あゆ: 姉様は展開の速さが気になっていたはず)\nOutput: 「そうですね、姉様。私は伏線の回収が少し急だったと思います」"},
	// やな敬体違反 → RETRY
	{models.SpeakerYana, "Thought: (やな: 真面目に答えよう)\nOutput: 「私もそう思います。」"},
	{models.SpeakerYana, "Thought: (やな: やっぱあゆの分析は鋭いなあ、嬉しい)\nOutput: 「だよね！あたしもそこ引っかかったんだ」"},
}

func main() {
	personaPath := flag.String("persona", "configs/persona_rules.yaml", "角色规则文件路径")
	flag.Parse()

	persona, err := rag.NewPersonaSource(*personaPath)
	if err != nil {
		log.Fatalf("角色规则加载失败: %v", err)
	}

	facts := rag.NewFactStore(persona, rag.NewSessionSource())
	facts.SetSceneContext(rag.SceneContext{
		Location:       "リビング",
		TimeOfDay:      "夜",
		AvailableProps: []string{"テレビ", "ソファ", "クッション"},
		Mood:           "まったり",
		CurrentTopic:   "映画の感想",
	})

	d := director.New(checks.NewStaticCheckSuite(), nil, facts, director.Options{
		Mode:          director.ModeHybrid,
		Thresholds:    config.DefaultThresholds(),
		RAGEnabled:    true,
		InjectEnabled: true,
	})
	sanitizer := checks.NewActionSanitizer()
	extractor := state.NewExtractor()

	fmt.Println("=== 対話評価デモ ===")
	fmt.Println()

	var history []models.Turn
	for i, turn := range demoTurns {
		turnNumber := i + 1
		fmt.Printf("--- ターン %d (%s) ---\n", turnNumber, turn.speaker)
		fmt.Println(indent(turn.response))

		eval := d.Evaluate(context.Background(), turn.speaker, turn.response, "映画の感想", history, turnNumber)
		fmt.Printf("裁定: %s\n", eval.Status)
		fmt.Printf("理由: %s\n", eval.Reason)
		if eval.Suggestion != "" {
			fmt.Printf("提案: %s\n", eval.Suggestion)
		}

		if thought := checks.ExtractThought(turn.response); thought != "" {
			extracted := extractor.Extract(thought, turn.speaker)
			fmt.Printf("状態: emotion=%s intensity=%.2f relationship=%s\n",
				extracted.Emotion, extracted.EmotionIntensity, extracted.RelationshipTone)
		}

		if eval.Status.IsPassing() {
			d.Commit(turn.response, eval)
			history = append(history, models.Turn{
				Speaker: turn.speaker,
				Content: director.ExtractOutput(turn.response),
			})
		}
		d.ClearRAGAttempts()
		fmt.Println()
	}

	// シーンにない小物を使う発言を浄化してみる
	fmt.Println("--- 動作浄化 ---")
	raw := "（コーヒーを飲む）「まあ、そういうことにしとこっか」"
	result := sanitizer.Sanitize(raw, facts.Session.AvailableProps())
	fmt.Printf("入力: %s\n", raw)
	fmt.Printf("出力: %s\n", result.SanitizedText)
	fmt.Printf("拦截: %v\n", result.BlockedProps)
	for _, prop := range result.BlockedProps {
		facts.AddBlockedProp(prop)
	}
	fmt.Println()

	// 拦截された道具が話題に出たら注入される
	fmt.Println("--- 事実注入 ---")
	injected := d.FactsForInjection(models.SpeakerYana, "", "コーヒーでも飲む？")
	for _, fact := range injected {
		fmt.Printf("[%s] %s\n", fact.Tag, fact.Text)
	}
	if decision := d.LastInjectionDecision(); decision != nil {
		fmt.Printf("判定: would_inject=%v reasons=%v\n", decision.WouldInject, decision.Reasons)
	}

	fmt.Println()
	fmt.Printf("採用ターン数: %d\n", d.AcceptedCount())
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
