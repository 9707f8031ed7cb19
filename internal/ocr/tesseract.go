package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Engine provides text recognition using Tesseract.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates a new OCR engine.
func NewEngine(language string) (*Engine, error) {
	client := gosseract.NewClient()

	if language == "" {
		language = "eng"
	}
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Disable dictionary-based word correction. The fields read here are
	// numbers and proper nouns, not English words, and the dictionary
	// pass "corrects" them into garbage.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	_ = client.SetVariable("language_model_penalty_non_dict_word", "0")
	_ = client.SetVariable("language_model_penalty_non_freq_dict_word", "0")

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Recognize performs OCR on an already-preprocessed image.
func (e *Engine) Recognize(img gocv.Mat, whitelist string, mode SegMode) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}

	psm := gosseract.PSM_SINGLE_LINE
	if mode == SegSingleBlock {
		psm = gosseract.PSM_SINGLE_BLOCK
	}
	if err := e.client.SetPageSegMode(psm); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}

	if err := e.client.SetWhitelist(whitelist); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}

	// Hand the pixels over as PNG; tesseract decodes internally.
	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	text = strings.TrimSpace(text)
	text = strings.Join(strings.Fields(text), " ")
	return text, nil
}
