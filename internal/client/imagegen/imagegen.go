// Package imagegen issues image edit requests to an OpenAI-compatible image API.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel   = "gpt-image-1"
	DefaultSize    = "1536x1024"
	DefaultQuality = "medium"
)

// ErrNoImage is returned when a successful response carries no image data.
var ErrNoImage = errors.New("no image returned")

// APIError is a non-2xx answer from the image API. Body is the response
// body as received; Message is the API's error message when it sent one.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("Images Edits error %d", e.StatusCode)
	}
	return fmt.Sprintf("Images Edits error %d: %s", e.StatusCode, e.Body)
}

// Image is one input picture.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// EditRequest describes one edit. Images are sent in order; the first is the base photo.
type EditRequest struct {
	Model   string
	Prompt  string
	Images  []Image
	Size    string
	N       int
	Quality string
}

// Result is the decoded first image of a response.
type Result struct {
	Image []byte
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the API rooted at baseURL, e.g. https://api.openai.com/v1.
// A nil hc means http.DefaultClient.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Edit sends req to /images/edits with apiKey as the bearer credential.
func (c *Client) Edit(ctx context.Context, apiKey string, req EditRequest) (*Result, error) {
	if len(req.Images) == 0 {
		return nil, errors.New("at least one image is required")
	}
	applyDefaults(&req)

	body, contentType, err := encodeForm(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/edits", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	var out openai.ImageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Data) == 0 || out.Data[0].B64JSON == "" {
		return nil, ErrNoImage
	}

	img, err := base64.StdEncoding.DecodeString(out.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Result{Image: img}, nil
}

func applyDefaults(req *EditRequest) {
	if req.Model == "" {
		req.Model = DefaultModel
	}
	if req.Size == "" {
		req.Size = DefaultSize
	}
	if req.N == 0 {
		req.N = 1
	}
	if req.Quality == "" {
		req.Quality = DefaultQuality
	}
}

func encodeForm(req EditRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("model", req.Model); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("prompt", req.Prompt); err != nil {
		return nil, "", err
	}
	for i, img := range req.Images {
		if err := writeImage(w, i, img); err != nil {
			return nil, "", err
		}
	}
	fields := [][2]string{
		{"size", req.Size},
		{"n", strconv.Itoa(req.N)},
		{"quality", req.Quality},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeImage(w *multipart.Writer, i int, img Image) error {
	name := img.Name
	if name == "" {
		name = fmt.Sprintf("image-%d.png", i)
	}
	ct := img.ContentType
	if ct == "" {
		ct = http.DetectContentType(img.Data)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image[]"; filename=%q`, name))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(img.Data)
	return err
}

// errorMessage extracts the upstream message, falling back to the raw body.
func errorMessage(raw []byte) string {
	var er openai.ErrorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Error != nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
