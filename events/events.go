package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

const SubjectPrefix = "prode"

// Event types, also the subject suffix they are published under.
const (
	MatchResultRecorded = "match.result"
	MatchesImported     = "match.imported"
	BracketSaved        = "bracket.saved"
	StandingsExported   = "standings.snapshot"
)

// Envelope is the JSON body of every published event.
type Envelope struct {
	EventType    string          `json:"event_type"`
	TournamentID int             `json:"tournament_id"`
	Timestamp    time.Time       `json:"timestamp"`
	Payload      json.RawMessage `json:"payload"`
}

// Publisher fans domain events out to other systems. Publishing is best
// effort: callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, eventType string, tournamentID int, payload interface{}) error
	Close() error
}

// Subject returns the subject an event type is published under.
func Subject(eventType string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
}

func newEnvelope(clock clockwork.Clock, eventType string, tournamentID int, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	data, err := json.Marshal(Envelope{
		EventType:    eventType,
		TournamentID: tournamentID,
		Timestamp:    clock.Now().UTC(),
		Payload:      raw,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// LogPublisher writes events to the log instead of a broker. It is used when
// no NATS URL is configured.
type LogPublisher struct {
	logger *slog.Logger
	clock  clockwork.Clock
}

func NewLogPublisher(logger *slog.Logger, clock clockwork.Clock) *LogPublisher {
	return &LogPublisher{logger: logger, clock: clock}
}

func (p *LogPublisher) Publish(ctx context.Context, eventType string, tournamentID int, payload interface{}) error {
	data, err := newEnvelope(p.clock, eventType, tournamentID, payload)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "event",
		slog.String("subject", Subject(eventType)),
		slog.Int("tournament_id", tournamentID),
		slog.String("body", string(data)),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
