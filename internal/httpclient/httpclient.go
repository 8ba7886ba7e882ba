package httpclient

import (
	"context"
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const maxRedirects = 5

var ErrUnexpectedStatus = errors.New("unexpected status code")

type Config struct {
	// Enable debug mode
	Debug bool

	// Default headers
	Headers map[string]string

	Timeout time.Duration

	// Values masked in URLs that reach logs and errors
	Secrets []string
}

type Client struct {
	baseURL *url.URL
	client  *fasthttp.Client
	Config
}

func New(baseURL string, config ...Config) (*Client, error) {
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse base url")
	}
	var cf Config
	if len(config) > 0 {
		cf = config[0]
	}
	if len(cf.Headers) == 0 {
		cf.Headers = make(map[string]string)
	}
	if cf.Timeout <= 0 {
		cf.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL: parsedBaseURL,
		client: &fasthttp.Client{
			ReadTimeout:  cf.Timeout,
			WriteTimeout: cf.Timeout,
		},
		Config: cf,
	}, nil
}

type RequestOptions struct {
	Query  url.Values
	Header map[string]string
}

type HttpResponse struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (r *HttpResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *HttpResponse) UnmarshalBody(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return errors.Wrapf(err, "can't unmarshal json body from %s", r.URL)
	}
	return nil
}

// BaseURL returns the cloned base URL of the client.
func (h *Client) BaseURL() *url.URL {
	u := *h.baseURL
	return &u
}

// Get issues a GET against path joined onto the base URL. An empty path uses
// the base URL as is.
func (h *Client) Get(ctx context.Context, reqPath string, reqOptions RequestOptions) (*HttpResponse, error) {
	target := h.BaseURL()
	if reqPath != "" {
		target.Path = path.Join(target.Path, reqPath)
	}
	if reqOptions.Query != nil {
		query := target.Query()
		for k, values := range reqOptions.Query {
			for _, v := range values {
				query.Add(k, v)
			}
		}
		target.RawQuery = query.Encode()
	}
	return h.do(ctx, fasthttp.MethodGet, target.String(), reqOptions.Header)
}

// GetJSON issues a GET and decodes a 2xx JSON body into out.
func (h *Client) GetJSON(ctx context.Context, reqPath string, reqOptions RequestOptions, out any) error {
	resp, err := h.Get(ctx, reqPath, reqOptions)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return errors.Wrapf(ErrUnexpectedStatus, "%d from %s", resp.StatusCode, resp.URL)
	}
	return resp.UnmarshalBody(out)
}

// Download fetches an absolute URL and returns its body, following redirects.
func (h *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, errors.Errorf("unsupported url %q", rawURL)
	}
	resp, err := h.do(ctx, fasthttp.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, errors.Wrapf(ErrUnexpectedStatus, "%d from %s", resp.StatusCode, resp.URL)
	}
	return resp.Body, nil
}

func (h *Client) do(ctx context.Context, method string, target string, headers map[string]string) (*HttpResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseResponse(resp)
		fasthttp.ReleaseRequest(req)
	}()

	req.Header.SetMethod(method)
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.SetRequestURI(target)

	if err := h.client.DoRedirects(req, resp, maxRedirects); err != nil {
		return nil, errors.Wrapf(err, "url: %s", h.redactURL(target))
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return nil, errors.Wrapf(err, "can't uncompress body from %s", h.redactURL(target))
	}

	if h.Debug {
		zap.L().Debug("Finished request",
			zap.String("method", method),
			zap.String("url", h.redactURL(target)),
			zap.Int("statusCode", resp.StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
	}

	return &HttpResponse{
		URL:        h.redactURL(target),
		StatusCode: resp.StatusCode(),
		Body:       append([]byte(nil), body...),
	}, nil
}

// redactURL drops the query string and masks secrets so API keys never reach
// logs or errors.
func (h *Client) redactURL(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	for _, secret := range h.Secrets {
		if secret != "" {
			raw = strings.ReplaceAll(raw, secret, "***")
		}
	}
	return raw
}
