// Package vlm клиент vision-language модели Azure OpenAI.
package vlm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"vision-assist/internal/domain/entity"
	"vision-assist/internal/domain/port"
)

const dangerPrompt = `You must only analyze the images for danger.
Consider things like open fires, step hazards and similar things as IMMEDIATE DANGER.
Consider potential flames, hazardous materials, train tracks and other potential dangers as POTENTIAL DANGER.
If nothing on the images can be considered dangerous, the danger level is LOW DANGER.
Respond ONLY with a valid JSON object in the following format, without any prefix:
{
  "type": "danger_analysis",
  "danger_level": "{level of danger detected on the images}",
  "danger_source": "{the source of danger, if detected. if none are detected, fill with NoDangerSources}"
}
Analyze the potential dangers of these images.`

const maxImageSide = 1024

// Config параметры подключения к Azure OpenAI
type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	Timeout    time.Duration
	MaxRetries uint64
}

// AzureClient классификатор опасности через chat completions
type AzureClient struct {
	cfg  Config
	http *http.Client
}

// NewAzureClient создаёт клиента
func NewAzureClient(cfg Config) (*AzureClient, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, errors.New("azure endpoint and api key are required")
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, errors.Wrap(err, "azure endpoint")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	return &AzureClient{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}, nil
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify отправляет все кадры одним запросом и возвращает текст ответа
func (c *AzureClient) Classify(ctx context.Context, frames []entity.ArchivedFrame) (string, error) {
	if len(frames) == 0 {
		return "", errors.New("no frames to classify")
	}

	parts := []contentPart{{Type: "text", Text: dangerPrompt}}
	for _, f := range frames {
		encoded, err := encodeFrame(f.Data)
		if err != nil {
			return "", errors.Wrapf(err, "encode %s", f.Name)
		}
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:image/jpeg;base64," + encoded},
		})
	}

	body, err := json.Marshal(chatRequest{Messages: []chatMessage{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: parts},
	}})
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	var reply string
	op := func() error {
		text, err := c.post(ctx, body)
		if err != nil {
			return err
		}
		reply = text
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return reply, nil
}

func (c *AzureClient) completionsURL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"),
		url.PathEscape(c.cfg.Deployment),
		url.QueryEscape(c.cfg.APIVersion))
}

func (c *AzureClient) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionsURL(), bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(errors.Wrap(err, "build request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "azure request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read response")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", errors.Errorf("azure status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", backoff.Permanent(errors.Errorf("azure status %d: %s", resp.StatusCode, bytes.TrimSpace(data)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", backoff.Permanent(errors.Wrap(err, "decode response"))
	}
	if len(parsed.Choices) == 0 {
		return "", backoff.Permanent(errors.New("azure response has no choices"))
	}
	return parsed.Choices[0].Message.Content, nil
}

// encodeFrame уменьшает кадр и кодирует его в base64 JPEG
func encodeFrame(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", err
	}
	b := img.Bounds()
	if b.Dx() > maxImageSide || b.Dy() > maxImageSide {
		img = imaging.Fit(img, maxImageSide, maxImageSide, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Проверка реализации интерфейса
var _ port.DangerClassifier = (*AzureClient)(nil)
