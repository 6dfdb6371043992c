package binstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/campusshare/campusshare/internal/pkg/logger"
)

// CloudinaryConfig configures the unsigned-upload Cloudinary client.
type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	// BaseURL overrides the API host, used by tests. Defaults to the public
	// Cloudinary endpoint.
	BaseURL string
	// Timeout bounds each HTTP call. Zero means 60s.
	Timeout time.Duration
}

// CloudinaryStore uploads binaries to Cloudinary via its unsigned upload API.
// Real images go to the image endpoint; everything else is uploaded as a raw
// asset so originals like PDFs are preserved byte for byte.
type CloudinaryStore struct {
	config CloudinaryConfig
	client *http.Client
}

// NewCloudinaryStore creates a new CloudinaryStore
func NewCloudinaryStore(config CloudinaryConfig) (*CloudinaryStore, error) {
	if config.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud name is required")
	}
	if config.UploadPreset == "" {
		return nil, fmt.Errorf("cloudinary upload preset is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.cloudinary.com"
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &CloudinaryStore{
		config: config,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type cloudinaryUploadResponse struct {
	SecureURL   string `json:"secure_url"`
	URL         string `json:"url"`
	DeleteToken string `json:"delete_token"`
	PublicID    string `json:"public_id"`
	Format      string `json:"format"`
}

// Upload sends the file to the unsigned upload endpoint and returns the
// retrieval URL and the delete token, when the preset issues one.
func (s *CloudinaryStore) Upload(ctx context.Context, fileName, contentType string, r io.Reader, size int64) (*UploadResult, error) {
	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/upload", s.config.BaseURL, s.config.CloudName, s.resourceType(contentType))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload payload: %w", err)
	}
	if err := writer.WriteField("upload_preset", s.config.UploadPreset); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed cloudinaryUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	resultURL := parsed.SecureURL
	if resultURL == "" {
		resultURL = parsed.URL
	}
	if resultURL == "" {
		return nil, fmt.Errorf("upload response carried no URL")
	}

	return &UploadResult{URL: resultURL, DeleteToken: parsed.DeleteToken}, nil
}

// DeleteByToken removes a previously uploaded binary via its delete token.
// Unknown or expired tokens are not errors; only transport failures are
// reported, and callers treat even those as best effort.
func (s *CloudinaryStore) DeleteByToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	endpoint := fmt.Sprintf("%s/v1_1/%s/delete_by_token", s.config.BaseURL, s.config.CloudName)

	form := url.Values{}
	form.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		// Token already consumed or asset gone; treat as success.
		logger.Debug().Msg("Delete token no longer known to the binary store")
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delete rejected with status %d", resp.StatusCode)
	}
	return nil
}

func (s *CloudinaryStore) resourceType(contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return "image"
	}
	return "raw"
}
