package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"copilotdesk/internal/config"

	"go.uber.org/zap/zapcore"
)

func debugConfig(dir string) config.LoggingConfig {
	return config.LoggingConfig{
		DebugMode: true,
		Level:     "debug",
		Format:    "text",
		Dir:       dir,
	}
}

// TestAllCategoriesLog tests that all categories create log files when debug_mode is true
func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()
	if err := Initialize(debugConfig(tempDir)); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(CloseAll)

	Boot("boot message %d", 1)
	Session("session message")
	Reply("reply message")
	UI("ui message")
	CloseAll()

	for _, cat := range []Category{CategoryBoot, CategorySession, CategoryReply, CategoryUI} {
		matches, err := filepath.Glob(filepath.Join(tempDir, "*_"+string(cat)+".log"))
		if err != nil {
			t.Fatalf("glob failed: %v", err)
		}
		if len(matches) != 1 {
			t.Errorf("category %s: expected 1 log file, got %d", cat, len(matches))
			continue
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read %s: %v", matches[0], err)
		}
		if !strings.Contains(string(data), string(cat)+" message") {
			t.Errorf("category %s: log missing message, got %q", cat, string(data))
		}
	}
}

// TestDebugModeOff verifies nothing touches the disk when debug_mode is false
func TestDebugModeOff(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "logs")
	c := debugConfig(tempDir)
	c.DebugMode = false

	if err := Initialize(c); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(CloseAll)

	Boot("should not be written")
	UIDebug("nor this")

	if IsCategoryEnabled(CategoryBoot) {
		t.Error("categories should be disabled when debug_mode is false")
	}
	if _, err := os.Stat(tempDir); !os.IsNotExist(err) {
		t.Errorf("logs dir should not exist, stat err = %v", err)
	}
}

func TestDisabledCategoryIsNop(t *testing.T) {
	tempDir := t.TempDir()
	c := debugConfig(tempDir)
	c.Categories = map[string]bool{"ui": false}

	if err := Initialize(c); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(CloseAll)

	if IsCategoryEnabled(CategoryUI) {
		t.Error("ui category should be disabled")
	}
	if !IsCategoryEnabled(CategorySession) {
		t.Error("unlisted categories default to enabled")
	}

	UI("dropped")
	CloseAll()

	matches, _ := filepath.Glob(filepath.Join(tempDir, "*_ui.log"))
	if len(matches) != 0 {
		t.Errorf("expected no ui log file, got %v", matches)
	}
}

func TestInitializeRequiresDir(t *testing.T) {
	c := debugConfig("")
	if err := Initialize(c); err == nil {
		t.Fatal("expected error when dir is empty in debug mode")
	}
	if IsCategoryEnabled(CategoryBoot) {
		t.Error("failed Initialize must leave logging disabled")
	}
	t.Cleanup(func() {
		CloseAll()
		_ = Initialize(config.LoggingConfig{})
	})
}

func TestLevelFiltersDebug(t *testing.T) {
	tempDir := t.TempDir()
	c := debugConfig(tempDir)
	c.Level = "info"
	if err := Initialize(c); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(CloseAll)

	ReplyDebug("hidden detail")
	Reply("visible line")
	CloseAll()

	matches, _ := filepath.Glob(filepath.Join(tempDir, "*_reply.log"))
	if len(matches) != 1 {
		t.Fatalf("expected 1 reply log, got %v", matches)
	}
	data, _ := os.ReadFile(matches[0])
	if strings.Contains(string(data), "hidden detail") {
		t.Error("debug line written at info level")
	}
	if !strings.Contains(string(data), "visible line") {
		t.Error("info line missing")
	}
}

func TestConcurrentGet(t *testing.T) {
	if err := Initialize(debugConfig(t.TempDir())); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(CloseAll)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			SessionDebug("worker %d", i)
		}(i)
	}
	wg.Wait()
}

// captureStderr returns whatever fn writes to os.Stderr.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w

	done := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()

	fn()

	_ = w.Close()
	os.Stderr = orig
	return <-done
}

// TestInitializeBadDirDegrades verifies an unusable logs dir switches logging
// off instead of failing every later call.
func TestInitializeBadDirDegrades(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(CloseAll)

	if err := Initialize(debugConfig(filepath.Join(blocker, "logs"))); err == nil {
		t.Fatal("expected error for a dir under a regular file")
	}

	out := captureStderr(t, func() {
		for _, cat := range []Category{CategoryBoot, CategorySession, CategoryReply, CategoryUI} {
			if Get(cat).Core().Enabled(zapcore.ErrorLevel) {
				t.Errorf("category %s should be a no-op logger", cat)
			}
		}
		Boot("ignored")
		UIDebug("ignored")
	})
	if out != "" {
		t.Errorf("expected no stderr output after degrading, got %q", out)
	}
}

// TestGetWarnsOnce verifies an unopenable log file is reported a single time.
func TestGetWarnsOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := Initialize(debugConfig(dir)); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(CloseAll)
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("remove: %v", err)
	}

	first := captureStderr(t, func() { Session("lost") })
	second := captureStderr(t, func() { Session("lost again") })

	if !strings.Contains(first, "could not open log file") {
		t.Errorf("expected one warning, got %q", first)
	}
	if second != "" {
		t.Errorf("expected silence on later calls, got %q", second)
	}
}
