// Package uploader implements the client half of the video upload pipeline:
// a coordinator that moves a locally recorded clip into object storage and
// marks it consumable, in four strictly sequential phases — authenticate,
// request grant, transfer, confirm. Progress is reported on a single 0-100
// scale and every failure is classified by the phase that produced it.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SessionProvider supplies the current bearer credential. It is injected
// rather than read from process-wide state so tests can substitute
// deterministic credentials.
type SessionProvider interface {
	// Session returns a bearer access token, or ErrNoSession when the user
	// is not signed in. Absence is authoritative; the coordinator does not
	// retry it.
	Session(ctx context.Context) (string, error)
}

// ErrNoSession is returned by a SessionProvider when no user is signed in.
var ErrNoSession = errors.New("no active session")

// SessionFunc adapts a function to the SessionProvider interface.
type SessionFunc func(ctx context.Context) (string, error)

func (f SessionFunc) Session(ctx context.Context) (string, error) { return f(ctx) }

// StaticSession returns a provider that always yields the given token.
func StaticSession(token string) SessionProvider {
	return SessionFunc(func(context.Context) (string, error) {
		if token == "" {
			return "", ErrNoSession
		}
		return token, nil
	})
}

// UploadRequest describes the intended upload before any bytes move.
// Constructed fresh per attempt; never reused.
type UploadRequest struct {
	TrickID    string
	UserID     string
	FileName   string
	FileSize   int64 // declared size in bytes, must be > 0
	MimeType   string
	DurationMs *int64
}

// UploadGrant is the intent service's answer to an upload request: a
// single-use, time-bounded write URL and the video identifier allocated
// for this attempt. A grant is never reused across attempts.
type UploadGrant struct {
	UploadURL string    `json:"uploadUrl"`
	VideoID   string    `json:"videoId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

const (
	defaultRequestTimeout  = 30 * time.Second
	defaultTransferTimeout = 15 * time.Minute
)

// Coordinator orchestrates upload attempts against the intent service and
// the object storage sink. Concurrent attempts are independent; the only
// shared dependency is the read-only SessionProvider.
type Coordinator struct {
	baseURL         string
	sessions        SessionProvider
	api             *http.Client
	transfer        *http.Client
	requestTimeout  time.Duration
	transferTimeout time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithAPIClient replaces the HTTP client used for intent-service calls.
func WithAPIClient(c *http.Client) Option {
	return func(u *Coordinator) { u.api = c }
}

// WithTransferClient replaces the HTTP client used for the storage PUT.
func WithTransferClient(c *http.Client) Option {
	return func(u *Coordinator) { u.transfer = c }
}

// WithRequestTimeout bounds the grant and confirmation calls.
func WithRequestTimeout(d time.Duration) Option {
	return func(u *Coordinator) { u.requestTimeout = d }
}

// WithTransferTimeout bounds the byte transfer.
func WithTransferTimeout(d time.Duration) Option {
	return func(u *Coordinator) { u.transferTimeout = d }
}

// New creates a Coordinator talking to the intent service at baseURL
// (e.g. "https://api.example.com").
func New(baseURL string, sessions SessionProvider, opts ...Option) *Coordinator {
	c := &Coordinator{
		baseURL:         strings.TrimRight(baseURL, "/"),
		sessions:        sessions,
		api:             http.DefaultClient,
		transfer:        http.DefaultClient,
		requestTimeout:  defaultRequestTimeout,
		transferTimeout: defaultTransferTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wire formats for the intent service.

type uploadRequestBody struct {
	TrickID  string `json:"trickId"`
	UserID   string `json:"userId"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	MimeType string `json:"mimeType"`
	Duration *int64 `json:"duration,omitempty"`
}

type completeRequestBody struct {
	VideoID string `json:"videoId"`
}

type remoteError struct {
	Error string `json:"error"`
}

// UploadVideo runs one upload attempt end to end and returns the video
// identifier assigned by the intent service.
//
// The progress callback, if non-nil, is invoked with a monotonically
// non-decreasing sequence of percentages: 10 once work begins, 20 once the
// grant is held, (20,90] while bytes move, and 100 on confirmation. It is
// never invoked after ctx is cancelled.
//
// Failures are returned as *Error tagged with the phase that produced
// them. The coordinator performs no internal retries: a retry is a new
// call with a fresh attempt (the grant obtained here is single-use and is
// discarded on any failure).
func (c *Coordinator) UploadVideo(ctx context.Context, req UploadRequest, media MediaSource, progress ProgressFunc) (string, error) {
	if req.FileSize <= 0 {
		return "", &Error{Phase: PhaseGrantRequest, Message: "file size must be positive"}
	}
	if req.MimeType == "" {
		return "", &Error{Phase: PhaseGrantRequest, Message: "mime type is required"}
	}

	tracker := newProgressTracker(ctx, progress)

	// Phase 1: authenticate. No session means no network traffic at all.
	token, err := c.sessions.Session(ctx)
	if err != nil || token == "" {
		return "", &Error{Phase: PhaseAuthenticate, Message: "not authenticated", Err: err}
	}
	tracker.report(progressStarted)

	// Phase 2: request grant.
	grant, err := c.requestGrant(ctx, token, req)
	if err != nil {
		return "", err
	}
	tracker.report(progressGranted)

	// Phase 3: transfer bytes to the grant's write URL. The URL is used
	// exactly once; on failure it is abandoned, never retried.
	if err := c.transferBytes(ctx, grant, req, media, tracker); err != nil {
		return "", err
	}
	tracker.report(progressTransferred)

	// Phase 4: confirm completion.
	if err := c.confirm(ctx, token, grant.VideoID); err != nil {
		return "", err
	}
	tracker.report(progressDone)

	return grant.VideoID, nil
}

// requestGrant asks the intent service for a write URL and video identifier.
func (c *Coordinator) requestGrant(ctx context.Context, token string, req UploadRequest) (*UploadGrant, error) {
	body, err := json.Marshal(uploadRequestBody{
		TrickID:  req.TrickID,
		UserID:   req.UserID,
		FileName: req.FileName,
		FileSize: req.FileSize,
		MimeType: req.MimeType,
		Duration: req.DurationMs,
	})
	if err != nil {
		return nil, &Error{Phase: PhaseGrantRequest, Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/api/v1/videos/upload-request", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Phase: PhaseGrantRequest, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.api.Do(httpReq)
	if err != nil {
		return nil, &Error{Phase: PhaseGrantRequest, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyResponse(PhaseGrantRequest, resp)
	}

	var grant UploadGrant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, &Error{Phase: PhaseGrantRequest, Message: "malformed grant response", Err: err}
	}
	if grant.UploadURL == "" || grant.VideoID == "" {
		return nil, &Error{Phase: PhaseGrantRequest, Message: "incomplete grant response"}
	}
	return &grant, nil
}

// transferBytes performs the single authenticated PUT of the clip to the
// grant's write URL. A grant that expired before the PUT lands is rejected
// by the sink itself and classified like any other transfer failure.
func (c *Coordinator) transferBytes(ctx context.Context, grant *UploadGrant, req UploadRequest, media MediaSource, tracker *progressTracker) error {
	source, err := media.Open(ctx)
	if err != nil {
		return &Error{Phase: PhaseTransfer, Message: "could not read media source", Err: err}
	}
	defer source.Close()

	reqCtx, cancel := context.WithTimeout(ctx, c.transferTimeout)
	defer cancel()

	body := &progressReader{r: source, total: req.FileSize, tracker: tracker}
	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPut, grant.UploadURL, body)
	if err != nil {
		return &Error{Phase: PhaseTransfer, Err: err}
	}
	httpReq.ContentLength = req.FileSize
	httpReq.Header.Set("Content-Type", req.MimeType)

	resp, err := c.transfer.Do(httpReq)
	if err != nil {
		return &Error{Phase: PhaseTransfer, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyResponse(PhaseTransfer, resp)
	}
	return nil
}

// confirm tells the intent service the bytes are in place, transitioning
// the video record to completed server-side.
func (c *Coordinator) confirm(ctx context.Context, token, videoID string) error {
	body, err := json.Marshal(completeRequestBody{VideoID: videoID})
	if err != nil {
		return &Error{Phase: PhaseConfirm, Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/api/v1/videos/complete", bytes.NewReader(body))
	if err != nil {
		return &Error{Phase: PhaseConfirm, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.api.Do(httpReq)
	if err != nil {
		return &Error{Phase: PhaseConfirm, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyResponse(PhaseConfirm, resp)
	}
	return nil
}

// classifyResponse turns a non-2xx response into a phase-tagged error,
// surfacing the remote {error} message verbatim when the body carries one.
func classifyResponse(phase Phase, resp *http.Response) *Error {
	uploadErr := &Error{Phase: phase, StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return uploadErr
	}
	var remote remoteError
	if json.Unmarshal(raw, &remote) == nil && remote.Error != "" {
		uploadErr.Message = remote.Error
	} else {
		uploadErr.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	return uploadErr
}
