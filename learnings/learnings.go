// Package learnings persists the notes the assistant has been taught about
// the athlete and recognises new notes in assistant replies.
package learnings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/trainingagent/store"
)

// Key is the fixed namespace of the learnings document in the store
const Key = "agent_learnings"

// ErrMalformed marks a stored document that is not valid JSON. Load recovers
// from it by starting over with an empty document.
var ErrMalformed = errors.New("malformed learnings document")

type Note struct {
	Date string `json:"date"` // YYYY-MM-DD
	Note string `json:"note"`

	// Extra holds any other fields of a stored note, written back unchanged
	Extra map[string]json.RawMessage `json:"-"`
}

func (n Note) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(n.Extra)+2)
	for k, v := range n.Extra {
		fields[k] = v
	}
	fields["date"] = n.Date
	fields["note"] = n.Note
	return json.Marshal(fields)
}

func (n *Note) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if err := takeField(fields, "date", &n.Date); err != nil {
		return err
	}
	if err := takeField(fields, "note", &n.Note); err != nil {
		return err
	}
	n.Extra = nil
	if len(fields) > 0 {
		n.Extra = fields
	}
	return nil
}

// Document marshals to {} when empty, matching a fresh store. Top-level keys
// other than notes are kept in Extra and survive a load/append cycle.
type Document struct {
	Notes []Note                     `json:"notes,omitempty"`
	Extra map[string]json.RawMessage `json:"-"`
}

func (d Document) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(d.Extra)+1)
	for k, v := range d.Extra {
		fields[k] = v
	}
	if len(d.Notes) > 0 {
		fields["notes"] = d.Notes
	}
	return json.Marshal(fields)
}

func (d *Document) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	d.Notes = nil
	if err := takeField(fields, "notes", &d.Notes); err != nil {
		return err
	}
	d.Extra = nil
	if len(fields) > 0 {
		d.Extra = fields
	}
	return nil
}

// takeField decodes fields[key] into dst, when present, and removes it
func takeField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	delete(fields, key)
	if string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}
	return nil
}

// Repository reads and writes the Document through an injected backend.
// Not safe for concurrent writers: Append is read-modify-write and the last
// writer wins.
type Repository struct {
	kv  store.KV
	log zerolog.Logger
}

func NewRepository(kv store.KV, log zerolog.Logger) *Repository {
	return &Repository{kv: kv, log: log}
}

// Load never fails: absent, unreadable or malformed data yields an empty
// document. Use it for display only; Append does its own strict read.
func (r *Repository) Load(ctx context.Context) Document {
	doc, err := r.read(ctx)
	if err != nil {
		r.log.Warn().Err(err).Str("key", Key).Msg("using empty learnings document")
		return Document{}
	}
	return doc
}

func (r *Repository) read(ctx context.Context) (Document, error) {
	raw, ok, err := r.kv.Get(ctx, Key)
	if err != nil {
		return Document{}, fmt.Errorf("read learnings: %w", err)
	}
	if !ok || raw == "" {
		return Document{}, nil
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}

// Append adds a note to the end of the document and writes the whole document
// back. A failed read aborts without writing; only a malformed document is
// replaced by a fresh one.
func (r *Repository) Append(ctx context.Context, note, date string) error {
	doc, err := r.read(ctx)
	if err != nil {
		if !errors.Is(err, ErrMalformed) {
			return err
		}
		r.log.Warn().Err(err).Str("key", Key).Msg("replacing malformed learnings document")
		doc = Document{}
	}
	doc.Notes = append(doc.Notes, Note{Date: date, Note: note})

	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode learnings: %w", err)
	}
	if err := r.kv.Set(ctx, Key, string(b)); err != nil {
		return fmt.Errorf("write learnings: %w", err)
	}
	r.log.Debug().Str("date", date).Int("notes", len(doc.Notes)).Msg("learning saved")
	return nil
}

// Indent renders the document the way it is shown to the assistant
func (d Document) Indent() string {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
