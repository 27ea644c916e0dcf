package connectors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aic-collections/sspad/internal/config"
)

// Datagrinder talks to the image processing service that generates master
// derivatives.
type Datagrinder struct {
	baseURL string
	client  *http.Client
}

func NewDatagrinder(cfg *config.Config) *Datagrinder {
	return &Datagrinder{
		baseURL: strings.TrimSuffix(cfg.DatagrinderBaseURL, "/") + "/",
		client:  &http.Client{},
	}
}

// ResizeFromData posts image bytes for resizing and returns the derivative.
func (d *Datagrinder) ResizeFromData(ctx context.Context, data []byte, fileName string, maxWidth, maxHeight int) ([]byte, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("width", strconv.Itoa(maxWidth)); err != nil {
		return nil, err
	}
	if err := w.WriteField("height", strconv.Itoa(maxHeight)); err != nil {
		return nil, err
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"resize.jpg", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if auth := authorization(ctx); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	return d.send(req)
}

// ResizeFromURL asks the service to fetch and resize a remote image.
func (d *Datagrinder) ResizeFromURL(ctx context.Context, srcURL string, maxWidth, maxHeight int) ([]byte, error) {
	params := url.Values{}
	params.Set("file", srcURL)
	params.Set("width", strconv.Itoa(maxWidth))
	params.Set("height", strconv.Itoa(maxHeight))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"resize.jpg?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if auth := authorization(ctx); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	return d.send(req)
}

func (d *Datagrinder) send(req *http.Request) ([]byte, error) {
	res, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("datagrinder resize: %w", err)
	}
	defer res.Body.Close()

	log.Printf("Image resize response: %d", res.StatusCode)
	if res.StatusCode > 399 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("datagrinder resize: status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return io.ReadAll(res.Body)
}
