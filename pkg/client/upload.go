package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// MediaUploader posts file content to a resource's upload endpoint and
// returns the location of the stored media. It is the transport half of the
// binary-attachment form role; the form engine only sees the location string
// that comes back.
type MediaUploader struct {
	client *Client
}

// NewMediaUploader wraps a client for multipart uploads.
func NewMediaUploader(c *Client) *MediaUploader {
	return &MediaUploader{client: c}
}

// Upload streams the named file to href's upload endpoint as
// multipart/form-data and returns the Location header identifying the stored
// media.
func (u *MediaUploader) Upload(ctx context.Context, href, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("files[]", filename)
	if err != nil {
		return "", fmt.Errorf("client: build upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("client: read upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("client: finish upload form: %w", err)
	}

	url := uploadURL(href)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", &Error{Kind: KindNetwork, URL: url, err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	u.client.authorize(req)

	resp, err := u.client.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if failure := u.client.failureFrom(resp, url); failure != nil {
		return "", failure
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", &Error{Kind: KindServer, Status: resp.StatusCode, URL: url, Detail: "upload response carried no location"}
	}
	return location, nil
}

func uploadURL(href string) string {
	if !strings.HasSuffix(href, "/") {
		href += "/"
	}
	return href + "upload/"
}
