package prefs

import (
	stderrors "errors"
	"log/slog"
	"os"
	"testing"

	"github.com/minigamehub/progress-engine/pkg/domain"
	"github.com/minigamehub/progress-engine/pkg/errors"
	"github.com/minigamehub/progress-engine/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	gw := storage.NewMemoryGateway(0, testLogger())
	store := NewStore(gw, testLogger())

	p := store.Load("u1")
	if p.Theme != "system" {
		t.Errorf("default theme = %q, want system", p.Theme)
	}
	if !p.SoundEnabled {
		t.Error("sound should default to enabled")
	}
	if p.ReducedMotion {
		t.Error("reduced motion should default to off")
	}
}

func TestSaveAndLoad(t *testing.T) {
	gw := storage.NewMemoryGateway(0, testLogger())
	store := NewStore(gw, testLogger())

	want := &domain.Preferences{Theme: "dark", SoundEnabled: false, ReducedMotion: true}
	if err := store.Save("u1", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := store.Load("u1")
	if *got != *want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}

	// Another user is unaffected.
	other := store.Load("u2")
	if other.Theme != "system" {
		t.Errorf("other user theme = %q, want system", other.Theme)
	}
}

func TestSaveRejectsUnknownTheme(t *testing.T) {
	gw := storage.NewMemoryGateway(0, testLogger())
	store := NewStore(gw, testLogger())

	err := store.Save("u1", &domain.Preferences{Theme: "solarized"})
	var perr *errors.ProgressError
	if !stderrors.As(err, &perr) || perr.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("Save with unknown theme = %v, want invalid input error", err)
	}
}

func TestLoadCorruptFallsBackToDefaults(t *testing.T) {
	gw := storage.NewMemoryGateway(0, testLogger())
	if err := gw.Set(storage.PrefsKey("u1"), "{nope"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := NewStore(gw, testLogger())

	p := store.Load("u1")
	if p.Theme != "system" {
		t.Errorf("corrupt record theme = %q, want system default", p.Theme)
	}
}

func TestLoadNormalizesStoredTheme(t *testing.T) {
	gw := storage.NewMemoryGateway(0, testLogger())
	if err := gw.Set(storage.PrefsKey("u1"), `{"theme":"neon","soundEnabled":true}`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := NewStore(gw, testLogger())

	if p := store.Load("u1"); p.Theme != "system" {
		t.Errorf("unknown stored theme = %q, want system", p.Theme)
	}
}
