// Package qr renders the branded emergency QR artifact: a scannable code
// pointing at the public scan view, topped with a warning header band.
package qr

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/config"
)

const (
	headerLine1 = "EMERGENCY MEDICAL QR"
	headerLine2 = "SCAN IMMEDIATELY"

	codeSize         = 320
	horizontalMargin = 40
	headerBandHeight = 96
	headerLineGap    = 12
)

// Artifact describes a rendered QR image on disk.
type Artifact struct {
	Path     string // location on disk, keyed by record id
	FileName string // basename of Path
	ScanURL  string // the URL encoded in the code
}

type Builder struct {
	baseURL string
	dir     string
	face    font.Face
}

// NewBuilder loads the configured header font once. When the face cannot
// be loaded the builder falls back to a built-in bitmap face rather than
// failing: a QR with a plain header is still scannable.
func NewBuilder(cfg config.QRConfig, log *zap.Logger) *Builder {
	face, err := gg.LoadFontFace(cfg.FontPath, cfg.FontSize)
	if err != nil {
		log.Warn("header font unavailable, using built-in face",
			zap.String("path", cfg.FontPath), zap.Error(err))
		face = basicfont.Face7x13
	}
	return &Builder{
		baseURL: cfg.PublicBaseURL,
		dir:     cfg.ArtifactDir,
		face:    face,
	}
}

// ScanURL is the fixed URL pattern encoded into the code for a record.
func (b *Builder) ScanURL(id uint) string {
	return fmt.Sprintf("%s/scan/%d", b.baseURL, id)
}

// ArtifactPath is the deterministic on-disk location for a record's QR
// image. Keyed by id so same-named patients never clobber each other.
func (b *Builder) ArtifactPath(id uint) string {
	return filepath.Join(b.dir, fmt.Sprintf("qr_%d.png", id))
}

// Build renders and persists the artifact for a record, overwriting any
// previous one for the same id.
func (b *Builder) Build(id uint) (*Artifact, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}

	scanURL := b.ScanURL(id)
	code, err := qrcode.New(scanURL, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encoding qr payload: %w", err)
	}
	codeImg := code.Image(codeSize)
	codeW := codeImg.Bounds().Dx()
	codeH := codeImg.Bounds().Dy()

	// Canvas is wide enough for whichever is wider, code or header text.
	measure := gg.NewContext(1, 1)
	measure.SetFontFace(b.face)
	w1, h1 := measure.MeasureString(headerLine1)
	w2, h2 := measure.MeasureString(headerLine2)
	textW := int(w1)
	if int(w2) > textW {
		textW = int(w2)
	}

	canvasW := codeW
	if textW > canvasW {
		canvasW = textW
	}
	canvasW += horizontalMargin
	canvasH := codeH + headerBandHeight

	dc := gg.NewContext(canvasW, canvasH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetFontFace(b.face)
	dc.SetRGB255(200, 0, 0)
	cx := float64(canvasW) / 2
	// Two lines stacked around the band's vertical center.
	y1 := float64(headerBandHeight)/2 - (h1+headerLineGap)/2
	y2 := float64(headerBandHeight)/2 + (h2+headerLineGap)/2
	dc.DrawStringAnchored(headerLine1, cx, y1, 0.5, 0.5)
	dc.DrawStringAnchored(headerLine2, cx, y2, 0.5, 0.5)

	dc.DrawImage(codeImg, (canvasW-codeW)/2, headerBandHeight)

	path := b.ArtifactPath(id)
	if err := dc.SavePNG(path); err != nil {
		return nil, fmt.Errorf("writing artifact: %w", err)
	}

	return &Artifact{
		Path:     path,
		FileName: filepath.Base(path),
		ScanURL:  scanURL,
	}, nil
}
