// Package loam archives finished sessions as Markdown documents: the outcome
// goes into the frontmatter and the transcript into the body.
package loam

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/notify"
	"github.com/aretw0/loam"
)

// Entry is the frontmatter of an archived session.
type Entry struct {
	SessionID         string   `json:"session_id" mapstructure:"session_id"`
	RequesterID       string   `json:"requester_id" mapstructure:"requester_id"`
	Status            string   `json:"status" mapstructure:"status"`
	Candidate         string   `json:"candidate,omitempty" mapstructure:"candidate"`
	Contact           string   `json:"contact,omitempty" mapstructure:"contact"`
	ConfirmationToken string   `json:"confirmation_token,omitempty" mapstructure:"confirmation_token"`
	PartySize         int      `json:"party_size,omitempty" mapstructure:"party_size"`
	Category          string   `json:"category,omitempty" mapstructure:"category"`
	Location          string   `json:"location,omitempty" mapstructure:"location"`
	Date              string   `json:"date,omitempty" mapstructure:"date"`
	Time              string   `json:"time,omitempty" mapstructure:"time"`
	Retries           int      `json:"retries" mapstructure:"retries"`
	Turns             int      `json:"turns" mapstructure:"turns"`
	Errors            []string `json:"errors,omitempty" mapstructure:"errors"`
	Path              []string `json:"path,omitempty" mapstructure:"path"`
	EndedAt           string   `json:"ended_at" mapstructure:"ended_at"`
}

// Record is an archived session.
type Record struct {
	Entry
	Transcript string
}

// Archive stores sessions in a Loam repository.
type Archive struct {
	repo *loam.TypedRepository[Entry]
}

// New wraps an existing typed repository.
func New(repo *loam.TypedRepository[Entry]) *Archive {
	return &Archive{repo: repo}
}

// Open initializes a repository in dir without versioning.
func Open(dir string) (*Archive, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid archive path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive dir: %w", err)
	}
	repo, err := loam.Init(absPath, loam.WithVersioning(false), loam.WithForceTemp(false))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[Entry](repo)), nil
}

// Notify implements ports.Notifier by saving the session.
func (a *Archive) Notify(ctx context.Context, s *domain.SessionState) error {
	err := a.repo.Save(ctx, &loam.DocumentModel[Entry]{
		ID:      s.ID,
		Content: transcript(s),
		Data:    entryOf(s),
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", s.ID, err)
	}
	return nil
}

// Get loads one archived session.
func (a *Archive) Get(ctx context.Context, sessionID string) (Record, error) {
	doc, err := a.repo.Get(ctx, sessionID)
	if err != nil {
		return Record{}, fmt.Errorf("loam get failed for %s: %w", sessionID, err)
	}
	return Record{Entry: doc.Data, Transcript: doc.Content}, nil
}

// List returns archived sessions, most recent first. A non-empty requester filters them.
func (a *Archive) List(ctx context.Context, requesterID string) ([]Entry, error) {
	docs, err := a.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	var out []Entry
	for _, doc := range docs {
		if doc.Data.SessionID == "" {
			continue
		}
		if requesterID != "" && doc.Data.RequesterID != requesterID {
			continue
		}
		out = append(out, doc.Data)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndedAt > out[j].EndedAt })
	return out, nil
}

func entryOf(s *domain.SessionState) Entry {
	o := notify.Summarize(s)
	e := Entry{
		SessionID:         o.SessionID,
		RequesterID:       o.RequesterID,
		Status:            string(o.Status),
		Candidate:         o.Candidate,
		Contact:           o.Contact,
		ConfirmationToken: o.ConfirmationToken,
		Category:          domain.Deref(o.Fields.Category),
		Location:          domain.Deref(o.Fields.Location),
		Date:              domain.Deref(o.Fields.Date),
		Time:              domain.Deref(o.Fields.Time),
		Retries:           o.Retries,
		Turns:             o.Turns,
		Errors:            o.Errors,
		Path:              o.Path,
		EndedAt:           o.EndedAt.UTC().Format(time.RFC3339Nano),
	}
	if o.Fields.PartySize != nil {
		e.PartySize = *o.Fields.PartySize
	}
	return e
}

func transcript(s *domain.SessionState) string {
	var sb strings.Builder
	for _, t := range s.Transcript {
		fmt.Fprintf(&sb, "**%s:** %s\n\n", t.Speaker, t.Text)
	}
	return strings.TrimSpace(sb.String())
}
