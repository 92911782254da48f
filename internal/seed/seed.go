// Package seed loads directory fixtures for single-node deployments.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// File is the fixture document.
//
//	users:
//	  - id: u1
//	    name: Ada
//	events:
//	  - id: e1
//	    state: PUBLISHED
//	    participantLimit: 10
//	    initiatorId: u1
type File struct {
	Users  []User  `yaml:"users" validate:"dive"`
	Events []Event `yaml:"events" validate:"dive"`
}

type User struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

type Event struct {
	ID                string `yaml:"id" validate:"required"`
	State             string `yaml:"state" validate:"required,oneof=PENDING PUBLISHED CANCELED"`
	ParticipantLimit  int    `yaml:"participantLimit" validate:"gte=0"`
	RequestModeration *bool  `yaml:"requestModeration"`
	InitiatorID       string `yaml:"initiatorId" validate:"required"`
}

// Snapshot converts the fixture. Moderation defaults to on.
func (e Event) Snapshot() domain.EventSnapshot {
	moderation := true
	if e.RequestModeration != nil {
		moderation = *e.RequestModeration
	}
	return domain.EventSnapshot{
		ID:                e.ID,
		State:             domain.EventState(e.State),
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: moderation,
		InitiatorID:       e.InitiatorID,
	}
}

// Writer stores fixtures.
type Writer interface {
	PutUser(ctx context.Context, u domain.User) error
	PutEvent(ctx context.Context, e domain.EventSnapshot) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses and validates a fixture document.
func Decode(r io.Reader) (File, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return File{}, fmt.Errorf("decoding seed: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return File{}, fmt.Errorf("validating seed: %w", err)
	}
	return f, nil
}

// Apply writes every user, then every event, and returns how many of each
// were stored.
func Apply(ctx context.Context, w Writer, f File) (users, events int, err error) {
	for _, u := range f.Users {
		if err := w.PutUser(ctx, domain.User{ID: u.ID, Name: u.Name}); err != nil {
			return users, events, fmt.Errorf("seeding user %s: %w", u.ID, err)
		}
		users++
	}
	for _, e := range f.Events {
		if err := w.PutEvent(ctx, e.Snapshot()); err != nil {
			return users, events, fmt.Errorf("seeding event %s: %w", e.ID, err)
		}
		events++
	}
	return users, events, nil
}

// LoadFile decodes path and applies it.
func LoadFile(ctx context.Context, w Writer, path string) (users, events int, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening seed: %w", err)
	}
	defer fh.Close()

	f, err := Decode(fh)
	if err != nil {
		return 0, 0, err
	}
	return Apply(ctx, w, f)
}
