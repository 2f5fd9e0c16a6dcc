package facedetection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

type detectionResponse struct {
	Detections []Box `json:"detections"`
}

// RemoteLocator posts images to an HTTP face detection service
type RemoteLocator struct {
	endpoint string
	client   *http.Client
}

func NewRemoteLocator(endpoint string, timeout time.Duration) *RemoteLocator {
	return &RemoteLocator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (r *RemoteLocator) Locate(ctx context.Context, img image.Image) (*Box, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := jpeg.Encode(part, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("face detection failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var result detectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	slog.Debug("RemoteLocator: detection finished", "endpoint", r.endpoint, "detections", len(result.Detections))

	if len(result.Detections) == 0 {
		return nil, nil
	}
	box := result.Detections[0]
	return &box, nil
}
