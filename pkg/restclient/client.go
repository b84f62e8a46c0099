// Package restclient talks to the clinic REST backend. Every entity follows
// the same route shape under the API prefix:
//
//	GET    /api/{entity}
//	GET    /api/{entity}/{mode}
//	GET    /api/{entity}/{id}
//	POST   /api/{entity}/create[/{relatedId}]
//	PUT    /api/{entity}/update/{id}
//	DELETE /api/{entity}/delete/{id}
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/client"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alijeyrad/dentaldesk/config"
	"github.com/Alijeyrad/dentaldesk/pkg/reqctx"
)

const instrumentationName = "github.com/Alijeyrad/dentaldesk/pkg/restclient"

const headerRequestID = "X-Request-Id"

type Config struct {
	BaseURL   string
	APIPrefix string
	UserAgent string
	Timeout   time.Duration
}

func FromCentralConfig(c config.BackendConfig) Config {
	return Config{
		BaseURL:   c.BaseURL,
		APIPrefix: c.APIPrefix,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout(),
	}
}

// Client is safe for concurrent use.
type Client struct {
	http   *client.Client
	prefix string

	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func New(cfg Config) *Client {
	hc := client.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		hc.AddHeader(fiber.HeaderUserAgent, cfg.UserAgent)
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}

	meter := otel.Meter(instrumentationName)
	requests, _ := meter.Int64Counter(
		"backend_request_count",
		metric.WithDescription("Requests sent to the clinic backend"),
		metric.WithUnit("{request}"),
	)
	duration, _ := meter.Float64Histogram(
		"backend_request_duration_ms",
		metric.WithDescription("Clinic backend request duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &Client{
		http:     hc,
		prefix:   prefix,
		tracer:   otel.Tracer(instrumentationName),
		requests: requests,
		duration: duration,
	}
}

// Resource returns the route set of one entity, e.g. "patients".
func (c *Client) Resource(entity string) *Resource {
	return &Resource{c: c, entity: entity, base: c.prefix + "/" + strings.Trim(entity, "/")}
}

// Resource implements the CRUD contract for one entity.
type Resource struct {
	c      *Client
	entity string
	base   string
}

func (r *Resource) Entity() string { return r.entity }

func (r *Resource) List(ctx context.Context, mode string) ([]map[string]any, error) {
	path := r.base
	if mode != "" {
		path += "/" + url.PathEscape(mode)
	}
	raw, err := r.c.do(ctx, r.entity, "list", fiber.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(raw)
}

func (r *Resource) Get(ctx context.Context, id string) (map[string]any, error) {
	raw, err := r.c.do(ctx, r.entity, "get", fiber.MethodGet, r.base+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(raw)
}

func (r *Resource) Create(ctx context.Context, relatedID string, body map[string]any) (map[string]any, error) {
	path := r.base + "/create"
	if relatedID != "" {
		path += "/" + url.PathEscape(relatedID)
	}
	raw, err := r.c.do(ctx, r.entity, "create", fiber.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	return decodeObject(raw)
}

func (r *Resource) Update(ctx context.Context, id string, body map[string]any) (map[string]any, error) {
	raw, err := r.c.do(ctx, r.entity, "update", fiber.MethodPut, r.base+"/update/"+url.PathEscape(id), body)
	if err != nil {
		return nil, err
	}
	return decodeObject(raw)
}

func (r *Resource) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, r.entity, "delete", fiber.MethodDelete, r.base+"/delete/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) do(ctx context.Context, entity, op, method, path string, body any) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "backend "+entity+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.target", path),
			attribute.String("dentaldesk.entity", entity),
		),
	)
	defer span.End()
	start := time.Now()

	req := c.http.R().SetContext(ctx)
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		req.SetHeader(k, v)
	}
	if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
		req.SetHeader(headerRequestID, rid)
	}
	if body != nil {
		req.SetJSON(body)
	}

	var (
		resp *client.Response
		err  error
	)
	switch method {
	case fiber.MethodGet:
		resp, err = req.Get(path)
	case fiber.MethodPost:
		resp, err = req.Post(path)
	case fiber.MethodPut:
		resp, err = req.Put(path)
	case fiber.MethodDelete:
		resp, err = req.Delete(path)
	default:
		err = fmt.Errorf("unsupported method %s", method)
	}

	status := 0
	defer func() {
		attrs := metric.WithAttributes(
			attribute.String("entity", entity),
			attribute.String("op", op),
			attribute.Int("status", status),
		)
		c.requests.Add(ctx, 1, attrs)
		c.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
	}()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer resp.Close()

	status = resp.StatusCode()
	raw := bytes.Clone(resp.Body())
	span.SetAttributes(attribute.Int("http.status_code", status))

	if status < 200 || status >= 300 {
		serr := &StatusError{Method: method, Path: path, Status: status, Message: errorMessage(raw)}
		span.SetStatus(codes.Error, serr.Error())
		return nil, serr
	}
	return raw, nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode backend object: %w", err)
	}
	if data, ok := obj["data"].(map[string]any); ok && len(obj) == 1 {
		return data, nil
	}
	return obj, nil
}

func decodeList(raw []byte) ([]map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []map[string]any{}, nil
	}
	if raw[0] == '[' {
		var items []map[string]any
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode backend list: %w", err)
		}
		return items, nil
	}
	var wrapped struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode backend list: %w", err)
	}
	if wrapped.Data == nil {
		return []map[string]any{}, nil
	}
	return wrapped.Data, nil
}

// errorMessage pulls a human message out of an error body when there is one.
// maxErrorMessage caps, in bytes, how much of a non-JSON error body is kept.
const maxErrorMessage = 200

func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	s := strings.TrimSpace(string(raw))
	if len(s) <= maxErrorMessage {
		return s
	}
	n := maxErrorMessage
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
