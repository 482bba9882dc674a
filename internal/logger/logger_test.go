package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aliskhannn/examprep-bot/internal/config"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	cfg := &config.Config{
		Env: "production",
		Log: config.Log{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1},
	}

	log, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("quiz submitted")
	log.Debug("dropped at info level")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"quiz submitted"`) {
		t.Fatalf("log file missing entry: %s", out)
	}
	if strings.Contains(out, "dropped at info level") {
		t.Fatalf("debug entry written in production: %s", out)
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	for _, env := range []string{"local", "production"} {
		log, err := New(&config.Config{Env: env})
		if err != nil {
			t.Fatalf("%s: %v", env, err)
		}
		if log == nil {
			t.Fatalf("%s: nil logger", env)
		}
	}
}
