package matting

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// RemoteRemover sends images to a rembg compatible HTTP endpoint (POST multipart "file",
// PNG with alpha in the response body)
type RemoteRemover struct {
	endpoint string
	client   *http.Client
}

func NewRemoteRemover(endpoint string, timeout time.Duration) *RemoteRemover {
	return &RemoteRemover{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (r *RemoteRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
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

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("background removal failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	matte, err := png.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	slog.Debug("RemoteRemover: background removed",
		"endpoint", r.endpoint,
		"duration_ms", time.Since(start).Milliseconds(),
		"width", matte.Bounds().Dx(),
		"height", matte.Bounds().Dy())
	return matte, nil
}
