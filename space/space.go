// Package space implements the asynchronous call/poll protocol spoken by
// remotely hosted inference spaces. An invocation is submitted to
// /call/{fn} and assigned an event id; a single follow-up poll retrieves a
// framed event stream whose last well-formed block carries the result.
package space

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

// Function indices of the hosted space. The index and the count/order of
// inputs are a fixed wire contract: a wrong order silently produces wrong
// results on the remote side, not a local error.
const (
	FnTranscribe       = 0 // inputs: handle
	FnSummarize        = 1 // inputs: text, strategy, quality
	FnProcessAudio     = 2 // inputs: handle, strategy, quality
	FnGenerateDocument = 3 // inputs: text, document_type, metadata_json
)

const defaultTimeout = 300 * time.Second

// Adapter speaks the call/poll protocol. The target backend is passed
// explicitly into every call; the adapter itself holds no endpoint state.
type Adapter struct {
	client *http.Client
	log    *logger.Logger
}

// New creates a call/poll adapter. A nil client gets a default with a
// 300-second wait budget; a nil logger discards logs.
func New(client *http.Client, log *logger.Logger) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Adapter{client: client, log: log.WithComponent("space")}
}

// Upload sends one file to the space's upload endpoint and returns the
// opaque resource handle the space assigned to it. The handle is required
// before the file can appear inside a function invocation's inputs.
func (a *Adapter) Upload(ctx context.Context, desc backend.Descriptor, data []byte, filename, mime string) (string, error) {
	op := fmt.Sprintf("space.upload %s", desc.BaseURL)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filename))
	header.Set("Content-Type", mime)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", errors.Internal(err).WithOp(op)
	}
	if _, err := part.Write(data); err != nil {
		return "", errors.Internal(err).WithOp(op)
	}
	if err := w.Close(); err != nil {
		return "", errors.Internal(err).WithOp(op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, desc.BaseURL+"/upload", &buf)
	if err != nil {
		return "", errors.Internal(err).WithOp(op)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return "", errors.FromTransport(ctx.Err(), err).WithOp(op)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Unavailable(err).WithOp(op)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.BadUpstream(resp.StatusCode, string(body)).WithOp(op)
	}

	var paths []string
	if err := json.Unmarshal(body, &paths); err != nil {
		return "", errors.BadUpstream(resp.StatusCode, "upload response is not a path array: "+string(body)).WithOp(op)
	}
	if len(paths) == 0 {
		return "", errors.BadUpstream(resp.StatusCode, "upload response contains no paths").WithOp(op)
	}

	a.log.Debug().
		Str(logger.FieldEndpoint, desc.BaseURL).
		Str("handle", paths[0]).
		Msg("file uploaded")
	return paths[0], nil
}

// Invoke runs one function on the space: exactly one submit POST and, on
// submit success, exactly one poll GET read to completion. It returns the
// decoded result object. Terminal on first failure; nothing is retried.
func (a *Adapter) Invoke(ctx context.Context, desc backend.Descriptor, fn int, inputs []any) (map[string]any, error) {
	op := fmt.Sprintf("space.invoke fn=%d %s", fn, desc.BaseURL)

	eventID, err := a.submit(ctx, desc, fn, inputs, op)
	if err != nil {
		return nil, err
	}

	a.log.Debug().
		Str(logger.FieldEndpoint, desc.BaseURL).
		Int(logger.FieldFnIndex, fn).
		Str(logger.FieldEventID, eventID).
		Msg("invocation submitted")

	payload, err := a.poll(ctx, desc, fn, eventID, op)
	if err != nil {
		return nil, err
	}
	return decodeResult(payload, op)
}

// Alive probes the space root and reports whether it answered 2xx.
func (a *Adapter) Alive(ctx context.Context, desc backend.Descriptor) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, desc.BaseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// submit POSTs the invocation and returns the assigned event id.
func (a *Adapter) submit(ctx context.Context, desc backend.Descriptor, fn int, inputs []any, op string) (string, error) {
	if inputs == nil {
		inputs = []any{}
	}
	body, err := json.Marshal(map[string]any{"data": inputs})
	if err != nil {
		return "", errors.Internal(err).WithOp(op)
	}

	url := fmt.Sprintf("%s/call/%d", desc.BaseURL, fn)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Internal(err).WithOp(op)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", errors.FromTransport(ctx.Err(), err).WithOp(op)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Unavailable(err).WithOp(op)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.BadUpstream(resp.StatusCode, "submit failed: "+string(raw)).WithOp(op)
	}

	var submitted struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(raw, &submitted); err != nil {
		return "", errors.BadUpstream(resp.StatusCode, "submit response is not JSON: "+string(raw)).WithOp(op)
	}
	if submitted.EventID == "" {
		return "", errors.BadUpstream(resp.StatusCode, "submit response missing event_id").WithOp(op)
	}
	return submitted.EventID, nil
}

// poll issues the single result GET and returns the payload of the last
// well-formed block in the event stream.
func (a *Adapter) poll(ctx context.Context, desc backend.Descriptor, fn int, eventID, op string) (string, error) {
	url := fmt.Sprintf("%s/call/%d/%s", desc.BaseURL, fn, eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Internal(err).WithOp(op)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", errors.FromTransport(ctx.Err(), err).WithOp(op)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", errors.BadUpstream(resp.StatusCode, "poll failed: "+string(raw)).WithOp(op)
	}

	payload, ok := lastPayload(resp.Body)
	if !ok {
		return "", errors.BadUpstream(resp.StatusCode, "poll stream contains no parseable block").WithOp(op)
	}
	return payload, nil
}

// decodeResult unpacks a poll payload. The payload is an array whose first
// element is a JSON-encoded string (the space double-encodes its output);
// further elements are ignored. An "error" field in the decoded object is a
// terminal upstream logic error.
func decodeResult(payload, op string) (map[string]any, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &outer); err != nil {
		return nil, errors.BadUpstream(0, "result payload is not an array: "+payload).WithOp(op)
	}
	if len(outer) == 0 {
		return nil, errors.BadUpstream(0, "result payload array is empty").WithOp(op)
	}

	var encoded string
	if err := json.Unmarshal(outer[0], &encoded); err != nil {
		return nil, errors.BadUpstream(0, "first result element is not a string: "+string(outer[0])).WithOp(op)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(encoded), &result); err != nil {
		return nil, errors.BadUpstream(0, "inner result is not a JSON object: "+encoded).WithOp(op)
	}

	if msg, ok := result["error"]; ok && msg != nil {
		return nil, errors.UpstreamLogic(fmt.Sprintf("%v", msg)).WithOp(op)
	}
	return result, nil
}
