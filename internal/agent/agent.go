// Package agent holds the presentation state of the dashboard: the live
// metrics snapshot, the chat transcript and the single-flight connect and
// chat operations that mutate them.
package agent

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/trainingagent/anthropic"
	"github.com/briangreenhill/trainingagent/intervals"
	"github.com/briangreenhill/trainingagent/internal/observability"
	"github.com/briangreenhill/trainingagent/internal/prompt"
	"github.com/briangreenhill/trainingagent/learnings"
	"github.com/briangreenhill/trainingagent/recovery"
)

var (
	ErrBusy          = errors.New("operation already in progress")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrMissingAPIKey = errors.New("please enter an API key")
)

// Metrics fetches the athlete snapshot. *intervals.Client implements it.
type Metrics interface {
	GetAthlete(ctx context.Context, athleteID string) (*intervals.Athlete, error)
	GetWellness(ctx context.Context, athleteID string, oldest, newest time.Time) ([]intervals.Wellness, error)
	GetActivities(ctx context.Context, athleteID string, oldest, newest time.Time) ([]intervals.Activity, error)
}

// Assistant answers one chat turn. *anthropic.Client implements it.
type Assistant interface {
	Send(ctx context.Context, system, userText string) (string, error)
}

// Learnings is the persisted notes document. *learnings.Repository implements it.
type Learnings interface {
	Load(ctx context.Context) learnings.Document
	Append(ctx context.Context, note, date string) error
}

type Options struct {
	Metrics   Metrics // nil when no intervals API key is configured
	AthleteID string
	Assistant Assistant
	Learnings Learnings
	Logger    zerolog.Logger
	Now       func() time.Time // defaults to time.Now
}

type snapshot struct {
	profile    *intervals.Athlete
	wellness   []intervals.Wellness
	activities []intervals.Activity
}

type Agent struct {
	metrics   Metrics
	athleteID string
	assistant Assistant
	learnings Learnings
	log       zerolog.Logger
	now       func() time.Time

	// one in-flight operation of each kind
	connectMu sync.Mutex
	chatMu    sync.Mutex

	mu         sync.RWMutex
	connected  bool
	connecting bool
	chatting   bool
	lastErr    string
	snap       snapshot
	transcript []anthropic.Message
}

func New(opts Options) *Agent {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Agent{
		metrics:   opts.Metrics,
		athleteID: opts.AthleteID,
		assistant: opts.Assistant,
		learnings: opts.Learnings,
		log:       opts.Logger,
		now:       now,
	}
}

// Connect loads profile, wellness window and activities in that order. The
// snapshot is replaced only when all three succeed; on failure the previous
// snapshot stays and the error is kept for display.
func (a *Agent) Connect(ctx context.Context) error {
	if !a.connectMu.TryLock() {
		observability.RecordOperation("connect", observability.ResultBusy)
		return ErrBusy
	}
	defer a.connectMu.Unlock()

	log := a.log.With().Str("op", "connect").Str("op_id", uuid.NewString()).Logger()

	if a.metrics == nil {
		a.mu.Lock()
		a.lastErr = ErrMissingAPIKey.Error()
		a.mu.Unlock()
		observability.RecordOperation("connect", observability.ResultError)
		return ErrMissingAPIKey
	}

	a.mu.Lock()
	a.connecting = true
	a.lastErr = ""
	a.mu.Unlock()

	snap, err := a.fetch(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.connecting = false

	if err != nil {
		a.connected = false
		a.lastErr = "connection failed: " + err.Error()
		log.Error().Err(err).Msg("connect failed")
		observability.RecordOperation("connect", observability.ResultError)
		return fmt.Errorf("connect: %w", err)
	}

	a.snap = snap
	a.connected = true
	a.transcript = []anthropic.Message{{
		Role:    anthropic.RoleAssistant,
		Content: prompt.Welcome(snap.profile, len(snap.activities)),
	}}

	if assessment := recovery.Score(snap.wellness, snap.profile); assessment != nil {
		observability.RecordScore(assessment.Score)
	}
	log.Info().
		Int("wellness", len(snap.wellness)).
		Int("activities", len(snap.activities)).
		Msg("connected")
	observability.RecordOperation("connect", observability.ResultOK)
	return nil
}

func (a *Agent) fetch(ctx context.Context) (snapshot, error) {
	now := a.now()

	started := time.Now()
	profile, err := a.metrics.GetAthlete(ctx, a.athleteID)
	observability.ObserveUpstream("intervals", started, err)
	if err != nil {
		return snapshot{}, err
	}

	started = time.Now()
	oldest, newest := intervals.WellnessWindow(now)
	wellness, err := a.metrics.GetWellness(ctx, a.athleteID, oldest, newest)
	observability.ObserveUpstream("intervals", started, err)
	if err != nil {
		return snapshot{}, err
	}

	started = time.Now()
	oldest, newest = intervals.ActivityWindow(now)
	activities, err := a.metrics.GetActivities(ctx, a.athleteID, oldest, newest)
	observability.ObserveUpstream("intervals", started, err)
	if err != nil {
		return snapshot{}, err
	}

	return snapshot{profile: profile, wellness: wellness, activities: activities}, nil
}

// SendChat runs one chat turn and returns the assistant message appended to
// the transcript. Assistant failures become an "Error: ..." message and a nil
// error so the conversation can continue.
func (a *Agent) SendChat(ctx context.Context, text string) (anthropic.Message, error) {
	if strings.TrimSpace(text) == "" {
		return anthropic.Message{}, ErrEmptyMessage
	}
	if !a.chatMu.TryLock() {
		observability.RecordOperation("chat", observability.ResultBusy)
		return anthropic.Message{}, ErrBusy
	}
	defer a.chatMu.Unlock()

	log := a.log.With().Str("op", "chat").Str("op_id", uuid.NewString()).Logger()

	a.mu.Lock()
	a.transcript = append(a.transcript, anthropic.Message{Role: anthropic.RoleUser, Content: text})
	a.chatting = true
	snap := a.snap
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.chatting = false
		a.mu.Unlock()
	}()

	doc := a.learnings.Load(ctx)
	system := prompt.BuildContext(snap.profile, recovery.Score(snap.wellness, snap.profile), snap.activities, doc)

	started := time.Now()
	reply, err := a.assistant.Send(ctx, system, text)
	observability.ObserveUpstream("anthropic", started, err)
	if err != nil {
		log.Error().Err(err).Msg("assistant call failed")
		observability.RecordOperation("chat", observability.ResultError)
		return a.appendReply("Error: " + err.Error()), nil
	}

	if note, ok := learnings.Extract(reply); ok {
		if err := a.learnings.Append(ctx, note, intervals.FormatDate(a.now())); err != nil {
			log.Warn().Err(err).Msg("could not save learning")
		} else {
			log.Info().Str("note", note).Msg("learning saved")
			observability.RecordLearningSaved()
		}
	}

	observability.RecordOperation("chat", observability.ResultOK)
	return a.appendReply(reply), nil
}

func (a *Agent) appendReply(content string) anthropic.Message {
	msg := anthropic.Message{Role: anthropic.RoleAssistant, Content: content}
	a.mu.Lock()
	a.transcript = append(a.transcript, msg)
	a.mu.Unlock()
	return msg
}

// State is a copy of everything the dashboard renders
type State struct {
	Connected      bool                    `json:"connected"`
	Connecting     bool                    `json:"connecting"`
	Chatting       bool                    `json:"chatting"`
	Error          string                  `json:"error,omitempty"`
	Profile        *intervals.Athlete      `json:"profile"`
	Wellness       []intervals.Wellness    `json:"wellness"`
	Activities     []intervals.Activity    `json:"activities"`
	Assessment     *recovery.Assessment    `json:"assessment"`
	Recommendation recovery.Recommendation `json:"recommendation"`
	Transcript     []anthropic.Message     `json:"transcript"`
}

// State derives the assessment and recommendation from the current snapshot
// on every call.
func (a *Agent) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()

	assessment := recovery.Score(a.snap.wellness, a.snap.profile)
	return State{
		Connected:      a.connected,
		Connecting:     a.connecting,
		Chatting:       a.chatting,
		Error:          a.lastErr,
		Profile:        a.snap.profile,
		Wellness:       a.snap.wellness,
		Activities:     a.snap.activities,
		Assessment:     assessment,
		Recommendation: recovery.Recommend(assessment),
		Transcript:     slices.Clone(a.transcript),
	}
}

// Learnings returns the stored notes document
func (a *Agent) Learnings(ctx context.Context) learnings.Document {
	return a.learnings.Load(ctx)
}
