// Package transcription contains the client for the Deepgram speech-to-text
// service.
package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.deepgram.com"
	listenPath     = "/v1/listen"

	// defaultTimeout bounds the whole upstream call. On expiry the request
	// is aborted and nothing is persisted by callers.
	defaultTimeout = 45 * time.Second
)

// ErrUnavailable indicates the service could not be reached at all
// (transport failure or timeout), as opposed to the service rejecting the
// request.
var ErrUnavailable = errors.New("transcription service unavailable")

// ProviderError is a non-2xx response from the service, carrying the
// provider's own message for surfacing to the caller.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Result is the transcript plus the derived metrics the dashboard stores.
type Result struct {
	Transcript   string
	Duration     float64
	WordCount    int
	SpeakerCount int
}

type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the service endpoint. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeout overrides the per-call deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		timeout:    defaultTimeout,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listenParams are fixed for every call: diarization, utterance
// segmentation, language detection and smart formatting are always on.
func listenParams() url.Values {
	params := url.Values{}
	params.Set("model", "nova-3")
	params.Set("smart_format", "true")
	params.Set("diarize", "true")
	params.Set("utterances", "true")
	params.Set("detect_language", "true")
	params.Set("filler_words", "true")
	return params
}

// Transcribe streams the media to the service and returns the transcript
// with derived metrics. The call is bounded by the client timeout; transport
// failure or timeout yields an error wrapping ErrUnavailable.
func (c *Client) Transcribe(ctx context.Context, media io.Reader, contentType string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + listenPath + "?" + listenParams().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, media)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, parseProviderError(resp)
	}

	var payload listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}

	return payload.toResult()
}

func parseProviderError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errPayload struct {
		Message string `json:"message"`
		ErrMsg  string `json:"err_msg"`
	}
	message := "Transcription failed"
	if err := json.Unmarshal(body, &errPayload); err == nil {
		if errPayload.Message != "" {
			message = errPayload.Message
		} else if errPayload.ErrMsg != "" {
			message = errPayload.ErrMsg
		}
	}

	return &ProviderError{StatusCode: resp.StatusCode, Message: message}
}

// listenResponse mirrors the slice of the /v1/listen payload the dashboard
// consumes.
type listenResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
				Words      []struct {
					Word  string  `json:"word"`
					Start float64 `json:"start"`
					End   float64 `json:"end"`
				} `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
		Utterances []struct {
			Speaker int    `json:"speaker"`
			Text    string `json:"transcript"`
		} `json:"utterances"`
	} `json:"results"`
}

// toResult extracts the transcript of the first channel's first alternative
// and the derived metrics. Utterance count stands in for speaker count and
// defaults to 1 when segmentation produced nothing.
func (p *listenResponse) toResult() (*Result, error) {
	if len(p.Results.Channels) == 0 || len(p.Results.Channels[0].Alternatives) == 0 {
		return nil, errors.New("unexpected transcription payload: no channel alternatives")
	}

	alt := p.Results.Channels[0].Alternatives[0]

	speakers := len(p.Results.Utterances)
	if speakers == 0 {
		speakers = 1
	}

	return &Result{
		Transcript:   alt.Transcript,
		Duration:     p.Metadata.Duration,
		WordCount:    len(alt.Words),
		SpeakerCount: speakers,
	}, nil
}
