// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Corphon/DuoTalkDirector/internal/api"
	"github.com/Corphon/DuoTalkDirector/internal/checks"
	"github.com/Corphon/DuoTalkDirector/internal/config"
	"github.com/Corphon/DuoTalkDirector/internal/director"
	"github.com/Corphon/DuoTalkDirector/internal/llm"
	"github.com/Corphon/DuoTalkDirector/internal/logging"
	"github.com/Corphon/DuoTalkDirector/internal/rag"
	"github.com/Corphon/DuoTalkDirector/internal/state"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// 2. 初始化 zap
	var zapLogger *zap.Logger
	if cfg.DebugMode {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	logger.Infow("starting duo talk director", "port", cfg.Port, "mode", cfg.DirectorMode)

	// 3. 角色规则は必須、読めなければ起動失敗
	persona, err := rag.NewPersonaSource(cfg.PersonaPath)
	if err != nil {
		logger.Fatalw("failed to load persona rules", "path", cfg.PersonaPath, "error", err)
	}
	facts := rag.NewFactStore(persona, rag.NewSessionSource())
	facts.SetEnabled(cfg.RAGEnabled)

	// 4. 会话日志存储
	store, err := logging.NewLogStore(cfg.LogDir)
	if err != nil {
		logger.Fatalw("failed to create log store", "dir", cfg.LogDir, "error", err)
	}
	defer store.Close()
	logger.Infow("session log store ready", "session_id", store.SessionID(), "dir", store.Dir())

	// 5. LLM 评分器（APIキー未設定なら静的検査のみ）
	var scorer *llm.Scorer
	if cfg.LLMAPIKey != "" {
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL: cfg.LLMBaseURL,
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
		})
		if err != nil {
			logger.Fatalw("failed to create llm client", "error", err)
		}
		scorer = llm.NewScorer(client)
	} else {
		logger.Warn("LLM_API_KEY not set, llm evaluation will be unavailable")
	}

	// 6. 组装编排器
	d := director.New(checks.NewStaticCheckSuite(), scorer, facts, director.Options{
		Mode:                 director.ParseMode(cfg.DirectorMode),
		Thresholds:           cfg.Thresholds,
		SkipLLMOnStaticRetry: cfg.SkipLLMOnStaticRetry,
		RAGEnabled:           cfg.RAGEnabled,
		InjectEnabled:        cfg.InjectEnabled,
	})

	hub := api.NewHub(logger)
	defer hub.Stop()

	handler := api.NewHandler(
		d,
		checks.NewActionSanitizer(),
		state.NewExtractor(),
		logging.NewSanitizerLogger(store),
		logging.NewThoughtLogger(store),
		hub,
		logger,
	)

	router := api.SetupRouter(handler, logger, cfg.DebugMode)

	// 7. 启动并优雅关闭
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("server failed", "error", err)
		}
	}()
	logger.Infow("server listening", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}
