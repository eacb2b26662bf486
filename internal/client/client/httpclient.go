package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrijs2005/moviebox/internal/common"
	"github.com/dmitrijs2005/moviebox/internal/metadata"
)

const requestTimeout = 10 * time.Second

type errorBody struct {
	Error string `json:"error"`
}

type HTTPClient struct {
	rest *resty.Client
}

// NewHTTPClient returns a client for the server at baseURL. Downloads are
// not bounded by the request timeout.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		rest: resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
	}
}

// escapePath escapes every segment of a slash-separated relative path.
func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

// statusError maps an unsuccessful response onto a sentinel error.
func statusError(resp *resty.Response) error {
	var body errorBody
	msg := resp.Status()
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		msg = body.Error
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrNotReady, msg)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", common.ErrBusy, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrInvalidPath, msg)
	}
	return fmt.Errorf("server error: %s", msg)
}

func transportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.rest.R().SetContext(ctx).Get("/health")
	if err != nil {
		return transportError(err)
	}
	if resp.IsError() {
		return statusError(resp)
	}
	return nil
}

func (c *HTTPClient) StartExport(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var out struct {
		JobID string `json:"job_id"`
	}
	resp, err := c.rest.R().SetContext(ctx).SetResult(&out).Get("/api/start_zip/" + escapePath(path))
	if err != nil {
		return "", transportError(err)
	}
	if resp.IsError() {
		return "", statusError(resp)
	}
	return out.JobID, nil
}

func (c *HTTPClient) ExportStatus(ctx context.Context, id string) (ExportStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var out ExportStatus
	resp, err := c.rest.R().SetContext(ctx).SetResult(&out).Get("/api/zip_status/" + url.PathEscape(id))
	if err != nil {
		return ExportStatus{}, transportError(err)
	}
	if resp.IsError() {
		return ExportStatus{}, statusError(resp)
	}
	return out, nil
}

func (c *HTTPClient) DownloadExport(ctx context.Context, id string, w io.Writer) (string, error) {
	resp, err := c.rest.R().SetContext(ctx).SetDoNotParseResponse(true).
		Get("/api/download_zip_result/" + url.PathEscape(id))
	if err != nil {
		return "", transportError(err)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		data, _ := io.ReadAll(body)
		resp.SetBody(data)
		return "", statusError(resp)
	}

	name := id + ".zip"
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}

	if _, err := io.Copy(w, body); err != nil {
		return "", fmt.Errorf("download %s: %w", id, err)
	}
	return name, nil
}

func (c *HTTPClient) Metadata(ctx context.Context, name, dir string, isDir bool) (*metadata.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var rec metadata.Record
	resp, err := c.rest.R().SetContext(ctx).
		SetQueryParams(map[string]string{
			"file":   name,
			"path":   dir,
			"is_dir": strconv.FormatBool(isDir),
		}).
		SetResult(&rec).
		Get("/api/metadata")
	if err != nil {
		return nil, transportError(err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	return &rec, nil
}
