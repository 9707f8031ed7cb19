package ocr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gocv.io/x/gocv"
)

// HTTPCourseRecognizer asks an external text-from-image service to read the
// course name out of the search area. The service gets the closed vocabulary
// as a hint and answers with free text; matching against the vocabulary still
// happens on our side.
type HTTPCourseRecognizer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPCourseRecognizer creates a recognizer talking to the given endpoint.
func NewHTTPCourseRecognizer(endpoint string) *HTTPCourseRecognizer {
	return &HTTPCourseRecognizer{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        2,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

type courseRequest struct {
	ImagePNG   []byte   `json:"image_png"`
	Vocabulary []string `json:"vocabulary"`
}

type courseResponse struct {
	Text string `json:"text"`
}

// RecognizeCourse implements CourseRecognizer.
func (r *HTTPCourseRecognizer) RecognizeCourse(img gocv.Mat, vocabulary []string) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return "", fmt.Errorf("failed to encode course area: %w", err)
	}
	defer buf.Close()

	payload, err := json.Marshal(courseRequest{
		ImagePNG:   buf.GetBytes(),
		Vocabulary: vocabulary,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := r.client.Post(r.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("course recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("course recognition returned %d: %s", resp.StatusCode, body)
	}

	var parsed courseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return parsed.Text, nil
}
