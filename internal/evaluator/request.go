package evaluator

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"
)

type formField struct {
	key   string
	value string
}

type formFile struct {
	field    string
	filename string
	content  io.Reader
}

// errorBody is the FastAPI error envelope. Detail is a string for HTTPException
// and a list of objects for request validation failures.
type errorBody struct {
	Detail any `mapstructure:"detail"`
}

func (c *Client) getJSON(ctx context.Context, op, url string, target any) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	req = c.setHeaders(req)
	req.Header.Set("Accept", contentType)

	return c.do(op, req, target)
}

func (c *Client) postForm(ctx context.Context, op, url string, fields []formField, file *formFile, target any) ([]byte, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for _, f := range fields {
		field, err := w.CreateFormField(f.key)
		if err != nil {
			return nil, &NetworkError{Op: op, Err: err}
		}

		if _, err = io.Copy(field, strings.NewReader(f.value)); err != nil {
			return nil, &NetworkError{Op: op, Err: err}
		}
	}

	if file != nil {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, &NetworkError{Op: op, Err: err}
		}

		if _, err = io.Copy(part, file.content); err != nil {
			return nil, &NetworkError{Op: op, Err: fmt.Errorf("reading %s: %w", file.filename, err)}
		}
	}

	if err := w.Close(); err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &b)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", contentType)

	return c.do(op, req, target)
}

// do sends the request and decodes a successful JSON body into target.
// The raw body is returned so callers can keep the server's exact payload.
func (c *Client) do(op string, req *http.Request, target any) ([]byte, error) {
	resp, err := c.request(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, &NetworkError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Detail:     parseDetail(data),
		}
	}

	if target == nil {
		return data, nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return nil, &NetworkError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status, Err: fmt.Errorf("decode response: %w", err)}
	}

	return data, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get(requestIDHeader)),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
	)

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set(requestIDHeader, uuid.NewString())

	return req
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	return io.ReadAll(reader)
}

func parseDetail(data []byte) string {
	if len(bytes.TrimSpace(data)) == 0 {
		return ""
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return ""
	}

	var body errorBody
	if err := mapstructure.Decode(raw, &body); err != nil {
		return ""
	}

	switch detail := body.Detail.(type) {
	case string:
		return strings.TrimSpace(detail)
	case []any:
		msgs := make([]string, 0, len(detail))
		for _, item := range detail {
			var entry struct {
				Msg string `mapstructure:"msg"`
			}
			if err := mapstructure.Decode(item, &entry); err != nil || entry.Msg == "" {
				continue
			}
			msgs = append(msgs, entry.Msg)
		}
		return strings.Join(msgs, "; ")
	default:
		return ""
	}
}
