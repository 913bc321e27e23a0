// internal/logging/log_store_test.go
package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Corphon/DuoTalkDirector/internal/checks"
	"github.com/Corphon/DuoTalkDirector/internal/models"
	"github.com/Corphon/DuoTalkDirector/internal/state"
)

func readJSONLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		lines = append(lines, record)
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestLogStoreWritesJSONL(t *testing.T) {
	store, err := NewLogStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	assert.Len(t, store.SessionID(), 8)

	require.NoError(t, store.Write("verdicts", "turn_evaluated",
		zap.String("speaker", models.SpeakerYana),
		zap.String("status", "PASS"),
	))
	require.NoError(t, store.Write("verdicts", "turn_evaluated",
		zap.String("speaker", models.SpeakerAyu),
		zap.String("status", "WARN"),
	))
	require.NoError(t, store.Close())

	lines := readJSONLines(t, filepath.Join(store.Dir(), "verdicts.jsonl"))
	require.Len(t, lines, 2)
	assert.Equal(t, "turn_evaluated", lines[0]["event"])
	assert.Equal(t, models.SpeakerYana, lines[0]["speaker"])
	assert.Equal(t, store.SessionID(), lines[0]["session_id"])
	assert.Equal(t, "WARN", lines[1]["status"])
}

func TestLogStoreSeparateFilesPerType(t *testing.T) {
	store, err := NewLogStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Write("sanitizer", "action_sanitized"))
	require.NoError(t, store.Write("thoughts", "thought_recorded"))
	require.NoError(t, store.Close())

	assert.FileExists(t, filepath.Join(store.Dir(), "sanitizer.jsonl"))
	assert.FileExists(t, filepath.Join(store.Dir(), "thoughts.jsonl"))
}

func TestSanitizerLoggerStats(t *testing.T) {
	store, err := NewLogStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	logger := NewSanitizerLogger(store)

	logger.LogSanitize(1, models.SpeakerYana, checks.SanitizeResult{
		SanitizedText:  "（一息つく）「さて」",
		ActionReplaced: true,
		BlockedProps:   []string{"コーヒー"},
		OriginalAction: "コーヒーを飲む",
	})
	logger.LogSanitize(2, models.SpeakerYana, checks.SanitizeResult{
		SanitizedText:  "（一息つく）「うん」",
		ActionReplaced: true,
		BlockedProps:   []string{"コーヒー"},
		OriginalAction: "コーヒーを啜る",
	})
	logger.LogSanitize(3, models.SpeakerAyu, checks.SanitizeResult{
		SanitizedText: "「そうですね」",
		ActionRemoved: true,
		BlockedProps:  []string{"眼鏡"},
	})
	// 何も起きていない結果は無視される
	logger.LogSanitize(4, models.SpeakerAyu, checks.SanitizeResult{
		SanitizedText: "「はい」",
	})

	freq := logger.PropFrequency()
	assert.Equal(t, 2, freq["コーヒー"])
	assert.Equal(t, 1, freq["眼鏡"])

	stats := logger.SpeakerStats()
	assert.Equal(t, SpeakerSanitizeStats{Replaced: 2}, stats[models.SpeakerYana])
	assert.Equal(t, SpeakerSanitizeStats{Removed: 1}, stats[models.SpeakerAyu])

	require.NoError(t, store.Close())
	lines := readJSONLines(t, filepath.Join(store.Dir(), "sanitizer.jsonl"))
	assert.Len(t, lines, 3)
}

func TestThoughtLogger(t *testing.T) {
	store, err := NewLogStore(t.TempDir())
	require.NoError(t, err)

	logger := NewThoughtLogger(store)

	extracted := state.NewExtractedState()
	extracted.Emotion = state.EmotionJoy
	extracted.EmotionIntensity = 0.7
	logger.LogThought(1, models.SpeakerYana, "あゆの提案、楽しそう", extracted)
	// 思考が空なら書かない
	logger.LogThought(2, models.SpeakerAyu, "", extracted)

	require.NoError(t, store.Close())
	lines := readJSONLines(t, filepath.Join(store.Dir(), "thoughts.jsonl"))
	require.Len(t, lines, 1)
	assert.Equal(t, "あゆの提案、楽しそう", lines[0]["thought"])
	assert.Equal(t, "joy", lines[0]["emotion"])
	assert.Equal(t, 0.7, lines[0]["emotion_intensity"])
}
