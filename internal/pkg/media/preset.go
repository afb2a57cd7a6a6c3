package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/homestay/homestay-client/internal/pkg/logger"
	"github.com/homestay/homestay-client/internal/pkg/metrics"
)

// PresetConfig points at an unsigned upload-preset endpoint.
type PresetConfig struct {
	URL     string
	Preset  string
	Folder  string
	Timeout time.Duration
}

// PresetUploader posts files to an unsigned upload preset and returns the
// secure_url from the answer.
type PresetUploader struct {
	cfg PresetConfig
	hc  *http.Client
	log zerolog.Logger
}

func NewPresetUploader(cfg PresetConfig, hc *http.Client) (*PresetUploader, error) {
	if cfg.URL == "" || cfg.Preset == "" {
		return nil, fmt.Errorf("upload url and preset are required")
	}
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &PresetUploader{cfg: cfg, hc: hc, log: logger.Component("media")}, nil
}

type presetResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (u *PresetUploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := checkPayload(data); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("upload_preset", u.cfg.Preset)
	if u.cfg.Folder != "" {
		_ = mw.WriteField("folder", u.cfg.Folder)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, path.Base(objectName("", name, contentType))))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.URL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := u.hc.Do(req)
	if err != nil {
		metrics.ObserveAPI(http.MethodPost, "media:preset", 0, time.Since(start))
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	defer resp.Body.Close()
	metrics.ObserveAPI(http.MethodPost, "media:preset", resp.StatusCode, time.Since(start))

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var out presetResponse
	decodeErr := json.Unmarshal(body, &out)

	switch {
	case resp.StatusCode >= http.StatusBadRequest:
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, msg)
	case decodeErr != nil:
		return "", fmt.Errorf("%w: decode response: %v", ErrUploadFailed, decodeErr)
	}

	url := out.SecureURL
	if url == "" {
		url = out.URL
	}
	if url == "" {
		return "", fmt.Errorf("%w: response carried no url", ErrUploadFailed)
	}
	u.log.Debug().Str("public_id", out.PublicID).Int("bytes", len(data)).Msg("Uploaded file to preset endpoint")
	return url, nil
}
