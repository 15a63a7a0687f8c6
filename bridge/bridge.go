// Package bridge exposes the four logical AI operations behind one stable
// interface, dispatching each to the protocol adapter the configured backend
// speaks and normalizing every reply into a typed result.
package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/prajwal-kadam12/ReqGen/backend"
	"github.com/prajwal-kadam12/ReqGen/direct"
	"github.com/prajwal-kadam12/ReqGen/errors"
	"github.com/prajwal-kadam12/ReqGen/logger"
	"github.com/prajwal-kadam12/ReqGen/space"
)

// Defaults matching the backend's own form defaults.
const (
	DefaultStrategy     = "balanced"
	DefaultQuality      = "medium"
	DefaultDocumentType = "brd"
	DefaultMetadata     = "{}"
)

// minSummarizeChars is the backend's lower bound on summarizable text;
// shorter input is rejected locally before any adapter call.
const minSummarizeChars = 10

// Bridge routes operations to the adapter matching the backend's protocol.
// The descriptor is resolved once and never changes; Bridge is safe for
// concurrent use.
type Bridge struct {
	desc   backend.Descriptor
	client *http.Client
	space  *space.Adapter
	direct *direct.Adapter
	log    *logger.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithHTTPClient sets the HTTP client used by both adapters. Its Timeout is
// the per-request wait budget.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Bridge) { b.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// New creates a Bridge for the given backend descriptor.
func New(desc backend.Descriptor, opts ...Option) *Bridge {
	b := &Bridge{desc: desc, log: logger.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	b.space = space.New(b.client, b.log)
	b.direct = direct.New(b.client, b.log)
	return b
}

// Descriptor returns the resolved backend descriptor.
func (b *Bridge) Descriptor() backend.Descriptor { return b.desc }

// Transcribe converts audio bytes into text.
func (b *Bridge) Transcribe(ctx context.Context, audio []byte, filename, mime string) (*Transcription, error) {
	if len(audio) == 0 {
		return nil, errors.InvalidRequest("audio payload is empty")
	}
	filename, mime = audioDefaults(filename, mime)

	raw, err := b.fileOperation(ctx, space.FnTranscribe, "/api/transcribe", audio, filename, mime, nil)
	if err != nil {
		return nil, err
	}
	return normalizeTranscription(raw)
}

// Summarize condenses text.
func (b *Bridge) Summarize(ctx context.Context, text, strategy, quality string) (*Summary, error) {
	if len(strings.TrimSpace(text)) < minSummarizeChars {
		return nil, errors.InvalidRequest("text too short to summarize")
	}
	strategy, quality = tuningDefaults(strategy, quality)

	var raw map[string]any
	var err error
	if b.desc.Mode == backend.ModeAsyncCallPoll {
		raw, err = b.space.Invoke(ctx, b.desc, space.FnSummarize, []any{text, strategy, quality})
	} else {
		raw, err = b.proxyJSON(ctx, "/api/summarize", map[string]string{
			"text": text, "strategy": strategy, "quality": quality,
		})
	}
	if err != nil {
		return nil, err
	}
	return normalizeSummary(raw)
}

// ProcessAudio transcribes audio and summarizes the transcript in one
// backend round trip.
func (b *Bridge) ProcessAudio(ctx context.Context, audio []byte, filename, mime, strategy, quality string) (*ProcessedAudio, error) {
	if len(audio) == 0 {
		return nil, errors.InvalidRequest("audio payload is empty")
	}
	filename, mime = audioDefaults(filename, mime)
	strategy, quality = tuningDefaults(strategy, quality)

	raw, err := b.fileOperation(ctx, space.FnProcessAudio, "/api/process-audio", audio, filename, mime,
		map[string]string{"strategy": strategy, "quality": quality})
	if err != nil {
		return nil, err
	}
	return normalizeProcessedAudio(raw)
}

// GenerateDocument renders text into a business document. metadataJSON must
// be a JSON object; empty means no metadata.
func (b *Bridge) GenerateDocument(ctx context.Context, text, docType, metadataJSON string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.InvalidRequest("no text provided")
	}
	if docType == "" {
		docType = DefaultDocumentType
	}
	if metadataJSON == "" {
		metadataJSON = DefaultMetadata
	}
	if !json.Valid([]byte(metadataJSON)) {
		return nil, errors.InvalidRequest("metadata is not valid JSON")
	}

	var raw map[string]any
	var err error
	if b.desc.Mode == backend.ModeAsyncCallPoll {
		raw, err = b.space.Invoke(ctx, b.desc, space.FnGenerateDocument, []any{text, docType, metadataJSON})
	} else {
		raw, err = b.proxyJSON(ctx, "/api/generate-document", map[string]string{
			"text": text, "document_type": docType, "metadata": metadataJSON,
		})
	}
	if err != nil {
		return nil, err
	}
	return normalizeDocument(raw)
}

// CheckUpload verifies that file uploads reach the backend. In call/poll
// mode it performs a resource upload and returns the assigned handle; in
// direct mode it proxies to the backend's test-upload endpoint.
func (b *Bridge) CheckUpload(ctx context.Context, file []byte, filename, mime string) (map[string]any, error) {
	if len(file) == 0 {
		return nil, errors.InvalidRequest("file payload is empty")
	}
	filename, mime = audioDefaults(filename, mime)

	if b.desc.Mode == backend.ModeAsyncCallPoll {
		handle, err := b.space.Upload(ctx, b.desc, file, filename, mime)
		if err != nil {
			return nil, err
		}
		return map[string]any{"path": handle}, nil
	}

	reply, err := b.direct.ProxyFile(ctx, b.desc, "/api/test-upload", file, filename, mime, nil)
	if err != nil {
		return nil, err
	}
	return b.replyObject(reply)
}

// Healthy probes the backend and reports whether it is reachable.
func (b *Bridge) Healthy(ctx context.Context) bool {
	if b.desc.Mode == backend.ModeAsyncCallPoll {
		return b.space.Alive(ctx, b.desc)
	}
	_, err := b.direct.Health(ctx, b.desc)
	return err == nil
}

// fileOperation runs one file-taking operation: upload-then-invoke against a
// call/poll backend, a single multipart proxy against a direct one.
func (b *Bridge) fileOperation(ctx context.Context, fn int, path string, audio []byte, filename, mime string, fields map[string]string) (map[string]any, error) {
	if b.desc.Mode == backend.ModeAsyncCallPoll {
		handle, err := b.space.Upload(ctx, b.desc, audio, filename, mime)
		if err != nil {
			return nil, err
		}
		inputs := []any{handle}
		if fields != nil {
			inputs = append(inputs, fields["strategy"], fields["quality"])
		}
		return b.space.Invoke(ctx, b.desc, fn, inputs)
	}

	reply, err := b.direct.ProxyFile(ctx, b.desc, path, audio, filename, mime, fields)
	if err != nil {
		return nil, err
	}
	return b.replyObject(reply)
}

// proxyJSON posts a JSON body to the direct backend and decodes the object.
func (b *Bridge) proxyJSON(ctx context.Context, path string, body map[string]string) (map[string]any, error) {
	reply, err := b.direct.ProxyJSON(ctx, b.desc, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	return b.replyObject(reply)
}

func (b *Bridge) replyObject(reply *direct.Reply) (map[string]any, error) {
	obj, err := reply.JSON()
	if err != nil {
		return nil, errors.BadUpstream(reply.StatusCode, "response is not a JSON object: "+string(reply.Body))
	}
	return obj, nil
}

func audioDefaults(filename, mime string) (string, string) {
	if filename == "" {
		filename = "audio.wav"
	}
	if mime == "" {
		mime = "audio/wav"
	}
	return filename, mime
}

func tuningDefaults(strategy, quality string) (string, string) {
	if strategy == "" {
		strategy = DefaultStrategy
	}
	if quality == "" {
		quality = DefaultQuality
	}
	return strategy, quality
}
