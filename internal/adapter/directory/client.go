// Package directory resolves users and events owned by remote services.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// Config controls how remote lookups are attempted.
type Config struct {
	BaseURL        string
	Timeout        time.Duration // per attempt
	MaxAttempts    uint
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns the retry policy used when nothing is configured.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		Timeout:        2 * time.Second,
		MaxAttempts:    10,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

var errAbsent = errors.New("absent")

// client performs GET lookups with retries. A 404 answers "absent" at once;
// transport failures and other statuses are retried until attempts run out.
type client struct {
	cfg  Config
	http *http.Client
	log  logrus.FieldLogger
}

func newClient(cfg Config, httpClient *http.Client, log logrus.FieldLogger) client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return client{cfg: cfg, http: httpClient, log: log}
}

func (c client) get(ctx context.Context, path string, out any) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.attempt(ctx, path, out)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.cfg.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.WithError(err).WithFields(logrus.Fields{
				"path":     path,
				"retry_in": next,
			}).Debug("directory lookup failed, retrying")
		}),
	)
	return err
}

func (c client) attempt(ctx context.Context, path string, out any) error {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(errAbsent)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// classify turns a lookup error into the directory error contract.
func classify(err error, entity, id string) error {
	if errors.Is(err, errAbsent) {
		return domain.NotFound(entity, id)
	}
	return &domain.UnavailableError{Directory: entity, ID: id, Err: err}
}

// remoteID accepts both JSON strings and numbers, since upstream services
// may use numeric keys.
type remoteID string

func (r *remoteID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = remoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*r = remoteID(n.String())
	return nil
}

type userDTO struct {
	ID   remoteID `json:"id"`
	Name string   `json:"name"`
}

type eventDTO struct {
	ID                remoteID `json:"id"`
	State             string   `json:"state"`
	ParticipantLimit  int      `json:"participantLimit"`
	RequestModeration *bool    `json:"requestModeration"`
	Initiator         userDTO  `json:"initiator"`
}

// UserClient implements domain.UserDirectory over HTTP.
type UserClient struct {
	client
}

// NewUserClient creates a client for GET {BaseURL}/internal/users/{id}.
func NewUserClient(cfg Config, httpClient *http.Client, log logrus.FieldLogger) *UserClient {
	return &UserClient{client: newClient(cfg, httpClient, log)}
}

func (c *UserClient) User(ctx context.Context, id string) (domain.User, error) {
	var dto userDTO
	if err := c.get(ctx, "/internal/users/"+url.PathEscape(id), &dto); err != nil {
		return domain.User{}, classify(err, domain.EntityUser, id)
	}
	return domain.User{ID: string(dto.ID), Name: dto.Name}, nil
}

// EventClient implements domain.EventDirectory over HTTP.
type EventClient struct {
	client
}

// NewEventClient creates a client for GET {BaseURL}/internal/events/{id}.
func NewEventClient(cfg Config, httpClient *http.Client, log logrus.FieldLogger) *EventClient {
	return &EventClient{client: newClient(cfg, httpClient, log)}
}

func (c *EventClient) Snapshot(ctx context.Context, id string) (domain.EventSnapshot, error) {
	var dto eventDTO
	if err := c.get(ctx, "/internal/events/"+url.PathEscape(id), &dto); err != nil {
		return domain.EventSnapshot{}, classify(err, domain.EntityEvent, id)
	}

	// Moderation is on unless the event service says otherwise.
	moderation := true
	if dto.RequestModeration != nil {
		moderation = *dto.RequestModeration
	}

	return domain.EventSnapshot{
		ID:                string(dto.ID),
		State:             domain.EventState(strings.ToUpper(dto.State)),
		ParticipantLimit:  dto.ParticipantLimit,
		RequestModeration: moderation,
		InitiatorID:       string(dto.Initiator.ID),
	}, nil
}

