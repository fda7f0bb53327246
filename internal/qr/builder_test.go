package qr

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/config"
)

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	return NewBuilder(config.QRConfig{
		PublicBaseURL: "http://localhost:5000",
		ArtifactDir:   t.TempDir(),
		FontPath:      "does-not-exist.ttf", // forces the built-in face
		FontSize:      22,
	}, zap.NewNop())
}

func TestScanURL(t *testing.T) {
	b := testBuilder(t)
	if got, want := b.ScanURL(7), "http://localhost:5000/scan/7"; got != want {
		t.Errorf("ScanURL(7) = %q, want %q", got, want)
	}
}

func TestBuildWritesArtifact(t *testing.T) {
	b := testBuilder(t)

	art, err := b.Build(42)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if art.FileName != "qr_42.png" {
		t.Errorf("FileName = %q, want qr_42.png", art.FileName)
	}
	if art.ScanURL != "http://localhost:5000/scan/42" {
		t.Errorf("ScanURL = %q", art.ScanURL)
	}

	f, err := os.Open(art.Path)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("artifact is not a valid PNG: %v", err)
	}
	if cfg.Width < codeSize {
		t.Errorf("canvas width = %d, want at least %d", cfg.Width, codeSize)
	}
	if cfg.Height != codeSize+headerBandHeight {
		t.Errorf("canvas height = %d, want %d", cfg.Height, codeSize+headerBandHeight)
	}
}

func TestBuildOverwritesPreviousArtifact(t *testing.T) {
	b := testBuilder(t)

	first, err := b.Build(5)
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	second, err := b.Build(5)
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if first.Path != second.Path {
		t.Errorf("artifact path changed between builds: %q vs %q", first.Path, second.Path)
	}

	entries, err := os.ReadDir(filepath.Dir(first.Path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected a single artifact on disk, found %d", len(entries))
	}
}

func TestArtifactPathKeyedByID(t *testing.T) {
	b := testBuilder(t)
	if b.ArtifactPath(1) == b.ArtifactPath(2) {
		t.Error("artifacts for distinct ids share a path")
	}
}
