package devkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/goliatone/go-storesync/core"
)

// Script is one canned vendor response. A zero Status counts as 200.
// Body is marshaled and decoded into the caller's out value.
type Script struct {
	Status int
	Body   any
	Err    error
}

// RecordedRequest captures one call made through the fake transport.
type RecordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

// FakeTransport replays scripted responses in call order and records
// every request. When calls outrun the scripts the last script repeats;
// with no scripts at all it answers an empty 200.
type FakeTransport struct {
	mu       sync.Mutex
	store    string
	scripts  []Script
	requests []RecordedRequest
}

func NewFakeTransport(store string, scripts ...Script) *FakeTransport {
	return &FakeTransport{
		store:   store,
		scripts: append([]Script(nil), scripts...),
	}
}

func (f *FakeTransport) Get(ctx context.Context, path string, out any) error {
	return f.handle(ctx, http.MethodGet, path, nil, out)
}

func (f *FakeTransport) Post(ctx context.Context, path string, body any, out any) error {
	return f.handle(ctx, http.MethodPost, path, body, out)
}

func (f *FakeTransport) Patch(ctx context.Context, path string, body any) error {
	return f.handle(ctx, http.MethodPatch, path, body, nil)
}

func (f *FakeTransport) handle(_ context.Context, method string, path string, body any, out any) error {
	if f == nil {
		return fmt.Errorf("devkit: fake transport is nil")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var encoded []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("devkit: marshal request body: %w", err)
		}
		encoded = raw
	}
	f.requests = append(f.requests, RecordedRequest{
		Method: method,
		Path:   path,
		Body:   encoded,
	})

	index := len(f.requests) - 1
	var script Script
	switch {
	case index < len(f.scripts):
		script = f.scripts[index]
	case len(f.scripts) > 0:
		script = f.scripts[len(f.scripts)-1]
	default:
		return nil
	}

	if script.Err != nil {
		return script.Err
	}
	status := script.Status
	if status == 0 {
		status = http.StatusOK
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		payload, _ := json.Marshal(script.Body)
		return &core.RequestError{
			Store:  f.store,
			Status: status,
			Body:   string(payload),
		}
	}
	if out == nil || script.Body == nil {
		return nil
	}
	raw, err := json.Marshal(script.Body)
	if err != nil {
		return fmt.Errorf("devkit: marshal scripted body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("devkit: decode scripted body: %w", err)
	}
	return nil
}

func (f *FakeTransport) Requests() []RecordedRequest {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]RecordedRequest, 0, len(f.requests))
	for _, item := range f.requests {
		copied := item
		copied.Body = append([]byte(nil), item.Body...)
		out = append(out, copied)
	}
	return out
}

var _ core.Transport = (*FakeTransport)(nil)
