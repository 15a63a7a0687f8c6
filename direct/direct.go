// Package direct proxies requests to a REST backend that accepts
// JSON/multipart and returns results in the unified schema directly. The
// adapter forwards bodies verbatim and relays upstream failures without
// reinterpretation.
package direct

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/prajwal-kadam12/ReqGen/backend"
	"github.com/prajwal-kadam12/ReqGen/errors"
	"github.com/prajwal-kadam12/ReqGen/logger"
)

// FileFieldName is the multipart field the backend expects files under.
const FileFieldName = "audio"

const defaultTimeout = 300 * time.Second

// Reply is one upstream response: the status code and the raw body,
// byte-for-byte as the backend sent it.
type Reply struct {
	StatusCode int
	Body       []byte
}

// JSON unmarshals the reply body into a generic object.
func (r *Reply) JSON() (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(r.Body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Adapter forwards requests to a direct REST backend. The target backend is
// passed explicitly into every call.
type Adapter struct {
	client *http.Client
	log    *logger.Logger
}

// New creates a REST proxy adapter. A nil client gets a default with a
// 300-second wait budget; a nil logger discards logs.
func New(client *http.Client, log *logger.Logger) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Adapter{client: client, log: log.WithComponent("direct")}
}

// ProxyJSON forwards body as JSON to {base}{path} and returns the upstream
// reply. On a non-2xx status the reply still carries the upstream status and
// body unchanged, alongside a typed error, so callers can relay it verbatim.
// A 2xx reply whose body is not JSON is a malformed response.
func (a *Adapter) ProxyJSON(ctx context.Context, desc backend.Descriptor, method, path string, body any) (*Reply, error) {
	op := fmt.Sprintf("direct.proxy %s %s%s", method, desc.BaseURL, path)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Internal(err).WithOp(op)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, desc.BaseURL+path, reader)
	if err != nil {
		return nil, errors.Internal(err).WithOp(op)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, op)
}

// ProxyFile POSTs a multipart body to {base}{path}: the file under
// FileFieldName plus one part per entry of fields. Response handling matches
// ProxyJSON.
func (a *Adapter) ProxyFile(ctx context.Context, desc backend.Descriptor, path string, file []byte, filename, mime string, fields map[string]string) (*Reply, error) {
	op := fmt.Sprintf("direct.proxy POST %s%s", desc.BaseURL, path)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, errors.Internal(err).WithOp(op)
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FileFieldName, filename))
	header.Set("Content-Type", mime)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, errors.Internal(err).WithOp(op)
	}
	if _, err := part.Write(file); err != nil {
		return nil, errors.Internal(err).WithOp(op)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Internal(err).WithOp(op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, desc.BaseURL+path, &buf)
	if err != nil {
		return nil, errors.Internal(err).WithOp(op)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return a.send(req, op)
}

// Health probes the backend's health endpoint.
func (a *Adapter) Health(ctx context.Context, desc backend.Descriptor) (*Reply, error) {
	return a.ProxyJSON(ctx, desc, http.MethodGet, "/api/health", nil)
}

// send executes the request and validates the reply.
func (a *Adapter) send(req *http.Request, op string) (*Reply, error) {
	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.FromTransport(req.Context().Err(), err).WithOp(op)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Unavailable(err).WithOp(op)
	}

	reply := &Reply{StatusCode: resp.StatusCode, Body: body}

	a.log.Debug().
		Str(logger.FieldOperation, op).
		Int(logger.FieldStatus, resp.StatusCode).
		Int64(logger.FieldDuration, time.Since(start).Milliseconds()).
		Msg("upstream reply")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Relay the upstream status and body without reinterpretation; the
		// bounded detail is for diagnostics only.
		return reply, errors.BadUpstream(resp.StatusCode, string(body)).WithOp(op)
	}
	if !json.Valid(body) {
		return nil, errors.BadUpstream(resp.StatusCode, "non-JSON body: "+string(body)).WithOp(op)
	}
	return reply, nil
}
