package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"go.uber.org/atomic"
)

// Http is a document downloaded over http. ReadAll must complete before reading.
type Http struct {
	status      *atomic.Int32
	client      *http.Client
	link        string
	method      string
	payload     []byte
	buffer      *bytes.Buffer
	reader      *bytes.Reader
	contentType string
	Content
}

var _ Source = (*Http)(nil)

type HttpConfig struct {
	client  *http.Client
	link    string
	method  string
	payload []byte
}

type HttpOption func(*HttpConfig)

func WithHttpMethod(method string) HttpOption {
	return func(h *HttpConfig) {
		h.method = method
	}
}

func WithHttpURL(link string) HttpOption {
	return func(h *HttpConfig) {
		h.link = link
	}
}

func WithPayload(payload []byte) HttpOption {
	return func(h *HttpConfig) {
		h.payload = payload
	}
}

func WithHttpClient(client *http.Client) HttpOption {
	return func(h *HttpConfig) {
		h.client = client
	}
}

func NewHttp(opts ...HttpOption) (*Http, error) {
	var cfg HttpConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.method == "" {
		cfg.method = http.MethodGet
	}
	if cfg.client == nil {
		cfg.client = http.DefaultClient
	}
	if _, err := url.Parse(cfg.link); err != nil {
		return nil, err
	}
	return &Http{
		status:  atomic.NewInt32(Unread),
		client:  cfg.client,
		link:    cfg.link,
		method:  cfg.method,
		payload: cfg.payload,
		buffer:  new(bytes.Buffer),
		reader:  bytes.NewReader(nil),
		Content: Content{
			meta: map[string]string{
				MetaSource: cfg.link,
				"url":      cfg.link,
				"method":   cfg.method,
			},
		},
	}, nil
}

func (h *Http) ReadStatus() ReadStatus {
	return h.status.Load()
}

// ReadAll downloads the document once. Concurrent calls while downloading get ErrReading.
func (h *Http) ReadAll(ctx context.Context) error {
	if h.status.Load() == ReadCompleted {
		return nil
	}
	if !h.status.CompareAndSwap(Unread, Reading) {
		return ErrReading
	}
	var body io.Reader
	if h.payload != nil {
		body = bytes.NewReader(h.payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, h.method, h.link, body)
	if err != nil {
		h.status.Store(Unread)
		return err
	}
	httpResp, err := h.client.Do(httpReq)
	if err != nil {
		h.status.Store(Unread)
		return err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= http.StatusBadRequest {
		h.status.Store(Unread)
		return fmt.Errorf("GET %s: %s", h.link, httpResp.Status)
	}
	h.buffer.Reset()
	if _, err = io.Copy(h.buffer, httpResp.Body); err != nil {
		h.buffer.Reset()
		h.status.Store(Unread)
		return err
	}
	h.contentType = httpResp.Header.Get("Content-Type")
	h.reader = bytes.NewReader(h.buffer.Bytes())
	h.status.Store(ReadCompleted)
	return nil
}

// ContentType returns the response content type once downloaded
func (h *Http) ContentType() string {
	return h.contentType
}

// Name returns the last element of the URL path
func (h *Http) Name() string {
	u, err := url.Parse(h.link)
	if err != nil {
		return h.link
	}
	return path.Base(u.Path)
}

func (h *Http) Read(p []byte) (int, error) {
	return h.reader.Read(p)
}

func (h *Http) ReadAt(p []byte, off int64) (int, error) {
	return h.reader.ReadAt(p, off)
}

func (h *Http) Size() int64 {
	return h.reader.Size()
}

func (h *Http) Close() error {
	return nil
}
