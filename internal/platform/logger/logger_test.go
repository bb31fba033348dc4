package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModesAndLevels(t *testing.T) {
	for _, mode := range []string{"dev", "production", "PROD", ""} {
		l, err := New(mode, "warn")
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		if l.SugaredLogger.Desugar().Core().Enabled(zapcore.InfoLevel) {
			t.Fatalf("info should be disabled at warn level for mode %q", mode)
		}
	}
	if _, err := New("dev", "loud"); err == nil {
		t.Fatalf("expected invalid level error")
	}
	l, err := New("dev", "")
	if err != nil {
		t.Fatalf("New default level: %v", err)
	}
	if !l.SugaredLogger.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("default level should be info")
	}
}

func TestFromCoreRecordsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromCore(core).With("component", "loader")
	l.Debug("scan", "documents", 2)
	l.Info("loaded", "planets", 3)
	l.Warn("skipped document", "key", "bad.json")
	l.Error("failed", "err", "boom")
	l.Sync()
	if logs.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", logs.Len())
	}
	warn := logs.FilterMessage("skipped document").All()
	if len(warn) != 1 || warn[0].ContextMap()["key"] != "bad.json" || warn[0].ContextMap()["component"] != "loader" {
		t.Fatalf("unexpected warn entry %+v", warn)
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("ignored", "k", "v")
	l.With("a", 1).Error("ignored")
}
