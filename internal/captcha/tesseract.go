package captcha

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// charWhitelist is the portal captcha alphabet.
const charWhitelist = "abcdefghijklmnopqrstuvwxyz0123456789"

// TesseractEngine recognizes captcha text by shelling out to the
// tesseract binary in single-word mode with TSV output, so per-word
// confidence scores are available.
type TesseractEngine struct {
	// Binary is the tesseract executable path. Defaults to "tesseract"
	// resolved from PATH.
	Binary string
}

// NewTesseractEngine creates an engine and verifies the binary is
// reachable.
func NewTesseractEngine(binary string) (*TesseractEngine, error) {
	if binary == "" {
		binary = "tesseract"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("tesseract binary not found: %w", err)
	}
	return &TesseractEngine{Binary: binary}, nil
}

// Recognize runs tesseract over the preprocessed image and returns the
// concatenated word text with the mean word confidence scaled to [0, 1].
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, float64, error) {
	f, err := os.CreateTemp("", "captcha-*.png")
	if err != nil {
		return "", 0, fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(image); err != nil {
		f.Close()
		return "", 0, fmt.Errorf("write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("close temp image: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.Binary,
		f.Name(), "stdout",
		"--oem", "1",
		"--psm", "8",
		"-c", "tessedit_char_whitelist="+charWhitelist,
		"tsv",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", 0, fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	text, confidence := parseTSV(stdout.String())
	return text, confidence, nil
}

// parseTSV extracts recognized words and mean confidence from tesseract
// TSV output. Word rows are level 5; conf and text are the last two
// columns.
func parseTSV(tsv string) (string, float64) {
	var (
		words     []string
		confSum   float64
		confCount int
	)
	for i, line := range strings.Split(tsv, "\n") {
		if i == 0 {
			continue // header
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		words = append(words, word)
		if conf, err := strconv.ParseFloat(cols[10], 64); err == nil && conf >= 0 {
			confSum += conf
			confCount++
		}
	}

	if len(words) == 0 {
		return "", 0
	}
	confidence := 0.0
	if confCount > 0 {
		confidence = confSum / float64(confCount) / 100
	}
	return strings.Join(words, ""), confidence
}
