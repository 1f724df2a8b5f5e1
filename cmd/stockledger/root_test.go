package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ASHISH26940/stockledger/internal/config"
	"github.com/ASHISH26940/stockledger/internal/persistence"
	internal_raft "github.com/ASHISH26940/stockledger/internal/raft"
	"github.com/ASHISH26940/stockledger/internal/store"
)

func writeConfig(t *testing.T, dir, dataFile string) string {
	t.Helper()
	path := filepath.Join(dir, "stockledger.toml")
	content := "data_file = \"" + filepath.ToSlash(dataFile) + "\"\n\n[log]\nlevel = \"error\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestRootCommand_FreshInventory(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "inventory.json")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", writeConfig(t, dir, dataFile)})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Apple stock: 7\n",
		"Orange stock: 0\n",
		"Low items: [banana]\n",
		"--- Items Report ---\napple -> 7\nbanana -> 3\n--------------------\n",
		"Logs:\n",
		": Added 10 of apple\n",
		": Added 5 of banana\n",
		": Added -2 of banana\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "widget") {
		t.Errorf("rejected movements must not be logged, got:\n%s", got)
	}

	saved, err := persistence.ReadFile(dataFile)
	if err != nil {
		t.Fatalf("expected the inventory to be saved: %v", err)
	}
	if diff := cmp.Diff(map[string]float64{"apple": 7, "banana": 3}, saved); diff != "" {
		t.Errorf("saved inventory mismatch (-want +got):\n%s", diff)
	}
}

func TestRootCommand_ExistingInventory(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "inventory.json")
	if err := persistence.WriteFile(dataFile, map[string]float64{"apple": 1, "orange": 4, "salt": 20}); err != nil {
		t.Fatalf("failed to seed inventory: %v", err)
	}

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", writeConfig(t, dir, dataFile)})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command failed: %v", err)
	}

	saved, err := persistence.ReadFile(dataFile)
	if err != nil {
		t.Fatalf("failed to read saved inventory: %v", err)
	}
	want := map[string]float64{"apple": 8, "banana": 3, "orange": 3, "salt": 20}
	if diff := cmp.Diff(want, saved); diff != "" {
		t.Errorf("saved inventory mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "Low items: [banana, orange]\n") {
		t.Errorf("unexpected low items in output:\n%s", out.String())
	}
}

func TestRootCommand_MissingExplicitConfig(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.toml")})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an explicitly given missing config, got none")
	}
}

func TestRunDemo_CorruptFileAndFailedSave(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "inventory.json")
	if err := os.WriteFile(dataFile, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	cfg := config.New()
	cfg.DataFile = dataFile

	var out bytes.Buffer
	st := store.New()
	if err := runDemo(&out, st, cfg, zap.NewNop()); err != nil {
		t.Fatalf("a corrupt file must not stop the run: %v", err)
	}
	if diff := cmp.Diff(map[string]float64{"apple": 7, "banana": 3}, st.Items()); diff != "" {
		t.Errorf("inventory mismatch (-want +got):\n%s", diff)
	}

	// Saving into a directory that does not exist is reported, not fatal.
	cfg.DataFile = filepath.Join(dir, "missing", "inventory.json")
	out.Reset()
	if err := runDemo(&out, store.New(), cfg, zap.NewNop()); err != nil {
		t.Fatalf("a failed save must not stop the run: %v", err)
	}
	if !strings.Contains(out.String(), "Logs:\n") {
		t.Errorf("expected the run to reach the log listing, got:\n%s", out.String())
	}
}

func TestApplyMovements(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	st := store.New()
	fsm := internal_raft.NewFSM(st, zap.NewNop())

	skipped := applyMovements(fsm, demoMovements, zap.New(core))
	if skipped != 3 {
		t.Errorf("expected 3 skipped movements, got %d", skipped)
	}
	if n := logs.FilterMessage("stock movement skipped").Len(); n != 3 {
		t.Errorf("expected 3 skip warnings, got %d", n)
	}
	if diff := cmp.Diff(map[string]float64{"apple": 7, "banana": 3}, st.Items()); diff != "" {
		t.Errorf("inventory mismatch (-want +got):\n%s", diff)
	}

	// The applied movements can be captured and replayed through a snapshot.
	snap, err := fsm.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	defer snap.Release()

	sink := &bufferSink{}
	if err := snap.Persist(sink); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	restored := store.New()
	if err := internal_raft.NewFSM(restored, nil).Restore(sink); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if diff := cmp.Diff(st.Items(), restored.Items()); diff != "" {
		t.Errorf("restored inventory mismatch (-want +got):\n%s", diff)
	}
}

// bufferSink is an in-memory raft.SnapshotSink that can be read back.
type bufferSink struct {
	bytes.Buffer
}

func (s *bufferSink) ID() string    { return "buffer" }
func (s *bufferSink) Cancel() error { return nil }
func (s *bufferSink) Close() error  { return nil }
