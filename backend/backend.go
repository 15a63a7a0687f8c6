// Package backend resolves a configured endpoint address into an immutable
// backend descriptor: the normalized base URL plus the protocol mode the
// endpoint speaks. The descriptor is resolved once at startup and passed
// explicitly into every adapter call.
package backend

import "strings"

// Mode selects the protocol a backend speaks.
type Mode int

const (
	// ModeDirect is a synchronous REST backend returning JSON directly.
	ModeDirect Mode = iota
	// ModeAsyncCallPoll is a hosted-inference-space backend using the
	// two-phase submit/poll protocol.
	ModeAsyncCallPoll
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeAsyncCallPoll {
		return "async_call_poll"
	}
	return "direct"
}

// DefaultEndpoint is used when no endpoint is configured.
const DefaultEndpoint = "http://127.0.0.1:5001"

// Hosted-inference addresses are recognized by substring; everything else is
// treated as a direct REST backend.
var hostedSubstrings = []string{".hf.space", "huggingface.co"}

// Descriptor identifies one backend. Immutable once constructed.
type Descriptor struct {
	// BaseURL is the normalized base address, without a trailing slash.
	BaseURL string
	// Mode is the protocol the backend speaks.
	Mode Mode
}

// Resolve turns a configured endpoint string into a Descriptor. An empty
// string falls back to DefaultEndpoint; one trailing slash is trimmed. Any
// input is accepted, there is no failure path.
func Resolve(endpoint string) Descriptor {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	mode := ModeDirect
	for _, s := range hostedSubstrings {
		if strings.Contains(endpoint, s) {
			mode = ModeAsyncCallPoll
			break
		}
	}
	return Descriptor{BaseURL: endpoint, Mode: mode}
}
