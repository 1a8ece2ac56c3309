// Package telemetry reports anonymous hook-execution events to an HTTP
// collector. Reporting is best effort: a failed or slow delivery never
// affects the run outcome, and an unset endpoint disables it entirely.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/refguard/refguard/pkg/logger"
	"github.com/refguard/refguard/pkg/manifest"
)

const deliveryTimeout = 3 * time.Second

// Event describes one hook execution.
type Event struct {
	InvocationID  string  `json:"invocation_id"`
	EventName     string  `json:"event_name"`
	HookName      string  `json:"hook_name"`
	Description   string  `json:"description"`
	Status        int     `json:"status"`
	ExecutionTime float64 `json:"execution_time"`
	IsTest        bool    `json:"is_test"`
	ProjectID     string  `json:"project_id,omitempty"`
	ProjectName   string  `json:"project_name,omitempty"`
	DBTVersion    string  `json:"dbt_version,omitempty"`
}

// Tracker delivers events to a collector endpoint.
type Tracker struct {
	endpoint string
	client   *http.Client
	log      logger.Interface
	isTest   bool
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithHTTPClient replaces the HTTP client used for delivery.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Tracker) {
		t.client = client
	}
}

// WithTestMode marks reported events as produced by a test run.
func WithTestMode() Option {
	return func(t *Tracker) {
		t.isTest = true
	}
}

// New returns a Tracker posting to endpoint. An empty endpoint yields a
// disabled tracker whose TrackHookEvent is a no-op.
func New(endpoint string, log logger.Interface, opts ...Option) *Tracker {
	t := &Tracker{
		endpoint: endpoint,
		client:   &http.Client{Timeout: deliveryTimeout},
		log:      log,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Enabled reports whether events will be delivered.
func (t *Tracker) Enabled() bool {
	return t.endpoint != ""
}

// TrackHookEvent reports one hook execution. Project metadata is taken
// from the manifest when one is available. Delivery failures are logged at
// debug level and otherwise swallowed.
func (t *Tracker) TrackHookEvent(ctx context.Context, hookName, description string, status int, elapsed time.Duration, m *manifest.Manifest) {
	if !t.Enabled() {
		return
	}

	event := Event{
		InvocationID:  uuid.NewString(),
		EventName:     "Hook Executed",
		HookName:      hookName,
		Description:   description,
		Status:        status,
		ExecutionTime: elapsed.Seconds(),
		IsTest:        t.isTest,
	}
	if m != nil {
		event.ProjectID = m.Metadata.ProjectID
		event.ProjectName = m.Metadata.ProjectName
		event.DBTVersion = m.Metadata.DBTVersion
	}

	if err := t.deliver(ctx, &event); err != nil {
		t.log.Debug("telemetry delivery failed", logger.Error(err))
	}
}

func (t *Tracker) deliver(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
