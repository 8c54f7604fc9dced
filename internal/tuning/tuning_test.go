package tuning

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/config"
	"github.com/san-kum/rigidsync/internal/world"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{-9.81, -9.81},
		{10, 10},
		{12.5, 10},
		{-100, -10},
		{float32(math.NaN()), 0},
		{float32(math.Inf(-1)), -10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{-9.81, -9.8},
		{0.04, 0},
		{0.06, 0.1},
		{10.04, 10},
		{-10.3, -10},
	}
	for _, tt := range tests {
		if got := Snap(tt.in); math.Abs(float64(got-tt.want)) > 1e-5 {
			t.Errorf("Snap(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPanelSetClamps(t *testing.T) {
	c := world.New(config.DefaultGravity)
	p := NewPanel(c, nil)

	if got := p.Set(X, 25); got != 10 {
		t.Errorf("expected clamp to 10, got %v", got)
	}
	if got := p.Set(Z, -3.3); got != -3.3 {
		t.Errorf("expected -3.3, got %v", got)
	}
	if g := c.Gravity(); g != (mgl32.Vec3{10, -9.81, -3.3}) {
		t.Errorf("controller gravity %v", g)
	}
	if p.Values() != c.Gravity() {
		t.Error("panel values should mirror the controller")
	}
}

func TestPanelNudge(t *testing.T) {
	c := world.New(config.DefaultGravity)
	p := NewPanel(c, nil)

	if got := p.Nudge(Y, 1); math.Abs(float64(got+9.7)) > 1e-5 {
		t.Errorf("expected -9.7, got %v", got)
	}
	for i := 0; i < 200; i++ {
		p.Nudge(X, 1)
	}
	if c.Gravity().X() != 10 {
		t.Errorf("nudging should stop at the limit, got %v", c.Gravity().X())
	}
}

func TestPanelApply(t *testing.T) {
	c := world.New(mgl32.Vec3{})
	p := NewPanel(c, nil)

	got := p.Apply(mgl32.Vec3{-20, -1.62, 4})
	if got != (mgl32.Vec3{-10, -1.62, 4}) || c.Gravity() != got {
		t.Errorf("applied %v, controller %v", got, c.Gravity())
	}
}

func TestDrainKeepsLatest(t *testing.T) {
	c := world.New(mgl32.Vec3{})
	p := NewPanel(c, nil)

	updates := make(chan mgl32.Vec3, 3)
	if Drain(updates, p) {
		t.Error("empty channel should apply nothing")
	}

	updates <- mgl32.Vec3{0, -1, 0}
	updates <- mgl32.Vec3{0, -2, 0}
	if !Drain(updates, p) {
		t.Fatal("expected updates to be applied")
	}
	if c.Gravity() != (mgl32.Vec3{0, -2, 0}) {
		t.Errorf("expected the latest update, got %v", c.Gravity())
	}
}

func TestPacerDrainsThenDefers(t *testing.T) {
	c := world.New(mgl32.Vec3{})
	p := NewPanel(c, nil)
	updates := make(chan mgl32.Vec3, 1)
	updates <- mgl32.Vec3{1, 2, 3}

	called := false
	pacer := Pacer(updates, p, func(context.Context) error {
		called = true
		if c.Gravity() != (mgl32.Vec3{1, 2, 3}) {
			t.Error("gravity should be applied before the next pacer runs")
		}
		return nil
	})
	if err := pacer(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("next pacer not called")
	}

	if err := Pacer(updates, p, nil)(context.Background()); err != nil {
		t.Errorf("nil next should be fine: %v", err)
	}
}

func TestWatcherPublishesGravity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("gravity: [1, 1, 1]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.GetPreset("moon")
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case g := <-w.Updates():
			if g == cfg.Gravity {
				return
			}
		case <-timeout:
			t.Fatal("no update after rewriting the config")
		}
	}
}

func TestWatcherKeepsGravityWhenFileOmitsIt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte("gravity: [0, -9.81, 0]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("max_delta: 0.05\n"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(path, []byte("gravity: [0, -3, 0]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case g := <-w.Updates():
		if g != (mgl32.Vec3{0, -3, 0}) {
			t.Errorf("file without gravity published %v", g)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no update after writing gravity")
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	w, err := Watch(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
