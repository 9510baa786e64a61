package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"quizboard-service/internal/auth"
	"quizboard-service/internal/config"
)

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: s3cret\n"), 0o600))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--config", path, "--user", "u1", "--name", "Alice"})
	require.NoError(t, cmd.Execute())

	provider, err := auth.NewJWTProvider("s3cret")
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/quiz", nil)
	req.Header.Set("Authorization", "Bearer "+string(bytes.TrimSpace(out.Bytes())))
	user, err := provider.CurrentUser(req)
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, "Alice", user.DisplayName)
}

func TestMemoryBackendsSeedOnce(t *testing.T) {
	ctx := context.Background()
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	stores, err := openBackends(ctx, config.Config{}, log)
	require.NoError(t, err)
	defer stores.Close()

	require.NoError(t, seedQuestions(ctx, stores.questions, log))
	require.NoError(t, seedQuestions(ctx, stores.questions, log))

	ids, err := stores.questions.ListIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 10)
}

func TestLoggerFallsBackToInfo(t *testing.T) {
	cfg := config.Config{}
	cfg.Log.Level = "chatty"
	cfg.Log.Format = "json"
	log := newLogger(cfg)
	require.Equal(t, logrus.InfoLevel, log.GetLevel())
	_, isJSON := log.Formatter.(*logrus.JSONFormatter)
	require.True(t, isJSON)
}

func TestPortPrecedence(t *testing.T) {
	t.Setenv("PORT", "")
	cmd := newRootCmd()
	flag := cmd.PersistentFlags().Lookup("port")
	require.Empty(t, flag.DefValue, "the flag must not mask server.port")

	cfg := config.Config{}
	require.Equal(t, "8080", resolvePort(flag.DefValue, cfg))
	cfg.Server.Port = "9090"
	require.Equal(t, "9090", resolvePort(flag.DefValue, cfg))
	require.Equal(t, "7070", resolvePort("7070", cfg))

	t.Setenv("PORT", "6060")
	require.Equal(t, "6060", newRootCmd().PersistentFlags().Lookup("port").DefValue)
}
