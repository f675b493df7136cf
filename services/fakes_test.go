package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/prode/brackets"
	"github.com/Dosada05/prode/models"
	"github.com/Dosada05/prode/repositories"
	"github.com/Dosada05/prode/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memMatchRepo struct {
	mu      sync.Mutex
	matches map[int]models.Match
}

func newMemMatchRepo(matches ...models.Match) *memMatchRepo {
	r := &memMatchRepo{matches: make(map[int]models.Match)}
	for _, m := range matches {
		r.matches[m.ID] = m
	}
	return r
}

func (r *memMatchRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Match, 0)
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &m, nil
}

func (r *memMatchRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[match.ID] = *match
	return nil
}

func (r *memMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, id int, homeScore, awayScore *int, status models.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.HomeScore, m.AwayScore, m.Status = homeScore, awayScore, status
	r.matches[id] = m
	return nil
}

func (r *memMatchRepo) get(id int) (models.Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	return m, ok
}

type predictionKey struct{ userID, matchID int }

type memPredictionRepo struct {
	mu          sync.Mutex
	nextID      int
	predictions map[predictionKey]models.Prediction
}

func newMemPredictionRepo(predictions ...models.Prediction) *memPredictionRepo {
	r := &memPredictionRepo{predictions: make(map[predictionKey]models.Prediction)}
	for _, p := range predictions {
		r.nextID++
		p.ID = r.nextID
		r.predictions[predictionKey{p.UserID, p.MatchID}] = p
	}
	return r
}

func (r *memPredictionRepo) sorted(keep func(models.Prediction) bool) []models.Prediction {
	out := make([]models.Prediction, 0)
	for _, p := range r.predictions {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memPredictionRepo) ListByUser(_ context.Context, userID, tournamentID int) ([]models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(p models.Prediction) bool {
		return p.UserID == userID && p.TournamentID == tournamentID
	}), nil
}

func (r *memPredictionRepo) ListByTournament(_ context.Context, tournamentID int, userIDs []int) ([]models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	allowed := make(map[int]bool, len(userIDs))
	for _, id := range userIDs {
		allowed[id] = true
	}
	return r.sorted(func(p models.Prediction) bool {
		return p.TournamentID == tournamentID && (userIDs == nil || allowed[p.UserID])
	}), nil
}

func (r *memPredictionRepo) Upsert(_ context.Context, p *models.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := predictionKey{p.UserID, p.MatchID}
	if existing, ok := r.predictions[key]; ok {
		p.ID = existing.ID
	} else {
		r.nextID++
		p.ID = r.nextID
	}
	r.predictions[key] = *p
	return nil
}

func (r *memPredictionRepo) Delete(_ context.Context, userID, matchID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := predictionKey{userID, matchID}
	if _, ok := r.predictions[key]; !ok {
		return repositories.ErrPredictionNotFound
	}
	delete(r.predictions, key)
	return nil
}

func (r *memPredictionRepo) get(userID, matchID int) (models.Prediction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.predictions[predictionKey{userID, matchID}]
	return p, ok
}

type entryKey struct{ userID, tournamentID, leagueID int }

type memBracketRepo struct {
	mu      sync.Mutex
	nextID  int
	entries map[entryKey]models.BracketEntry
	saves   int
	now     time.Time
}

func newMemBracketRepo(entries ...models.BracketEntry) *memBracketRepo {
	r := &memBracketRepo{entries: make(map[entryKey]models.BracketEntry)}
	for _, e := range entries {
		r.nextID++
		e.ID = r.nextID
		e.Picks = e.Picks.Clone()
		r.entries[entryKey{e.UserID, e.TournamentID, e.LeagueID}] = e
	}
	return r
}

func (r *memBracketRepo) Get(_ context.Context, userID, tournamentID, leagueID int) (*models.BracketEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[entryKey{userID, tournamentID, leagueID}]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	e.Picks = e.Picks.Clone()
	return &e, nil
}

func (r *memBracketRepo) list(keep func(models.BracketEntry) bool) []models.BracketEntry {
	out := make([]models.BracketEntry, 0)
	for _, e := range r.entries {
		if keep(e) {
			e.Picks = e.Picks.Clone()
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memBracketRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.BracketEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(e models.BracketEntry) bool { return e.TournamentID == tournamentID }), nil
}

func (r *memBracketRepo) ListByLeague(_ context.Context, tournamentID, leagueID int) ([]models.BracketEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(e models.BracketEntry) bool {
		return e.TournamentID == tournamentID && e.LeagueID == leagueID
	}), nil
}

func (r *memBracketRepo) Save(_ context.Context, _ repositories.SQLExecutor, entry *models.BracketEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entryKey{entry.UserID, entry.TournamentID, entry.LeagueID}
	if existing, ok := r.entries[key]; ok {
		entry.ID = existing.ID
		entry.Points = existing.Points
	} else {
		r.nextID++
		entry.ID = r.nextID
	}
	entry.UpdatedAt = r.now
	stored := *entry
	stored.Picks = entry.Picks.Clone()
	r.entries[key] = stored
	r.saves++
	return nil
}

func (r *memBracketRepo) UpdatePoints(_ context.Context, _ repositories.SQLExecutor, points map[int]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, e := range r.entries {
		if p, ok := points[e.ID]; ok {
			e.Points = p
			r.entries[key] = e
		}
	}
	return nil
}

func (r *memBracketRepo) get(userID, tournamentID, leagueID int) (models.BracketEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[entryKey{userID, tournamentID, leagueID}]
	return e, ok
}

type memTiebreakerRepo struct {
	mu      sync.Mutex
	guesses map[entryKey]models.TiebreakerGuess
}

func newMemTiebreakerRepo(guesses ...models.TiebreakerGuess) *memTiebreakerRepo {
	r := &memTiebreakerRepo{guesses: make(map[entryKey]models.TiebreakerGuess)}
	for _, g := range guesses {
		r.guesses[entryKey{g.UserID, g.TournamentID, g.LeagueID}] = g
	}
	return r
}

func (r *memTiebreakerRepo) Get(_ context.Context, userID, tournamentID, leagueID int) (*models.TiebreakerGuess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guesses[entryKey{userID, tournamentID, leagueID}]
	if !ok {
		return nil, repositories.ErrTiebreakerNotFound
	}
	return &g, nil
}

func (r *memTiebreakerRepo) ListByLeague(_ context.Context, tournamentID, leagueID int) ([]models.TiebreakerGuess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.TiebreakerGuess, 0)
	for _, g := range r.guesses {
		if g.TournamentID == tournamentID && g.LeagueID == leagueID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *memTiebreakerRepo) Upsert(_ context.Context, guess *models.TiebreakerGuess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guesses[entryKey{guess.UserID, guess.TournamentID, guess.LeagueID}] = *guess
	return nil
}

type fakeCatalog struct {
	format brackets.Format
	lead   time.Duration
}

func (c fakeCatalog) FormatFor(int, []models.Match) brackets.Format { return c.format }
func (c fakeCatalog) LockLeadFor(int) time.Duration                 { return c.lead }

type recordingHub struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (h *recordingHub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		h.messages = append(h.messages, msg)
	}
}

func (h *recordingHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.messages))
	for _, m := range h.messages {
		out = append(out, m.Type)
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, tournamentID int, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, fmt.Sprintf("%s/%d", eventType, tournamentID))
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Upload(_ context.Context, key string, _ string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: s.GetPublicURL(key)}, nil
}

func (s *memStore) GetPublicURL(key string) string {
	return "https://cdn.prode.test/" + key
}

// Fixture: a continental tournament (id 7) with two group matches and a small
// knockout tree whose round of 16 starts at kickoff.
const fixtureTournament = 7

var kickoff = time.Date(2026, 6, 28, 18, 0, 0, 0, time.UTC)

func ip(v int) *int { return &v }

func groupMatch(id int, group, home, away string, h, a *int) models.Match {
	m := models.Match{
		ID:           id,
		TournamentID: fixtureTournament,
		HomeTeam:     home,
		AwayTeam:     away,
		HomeScore:    h,
		AwayScore:    a,
		Status:       models.MatchStatusScheduled,
		Phase:        "GROUP_" + group,
		Date:         kickoff.Add(-10 * 24 * time.Hour).Add(time.Duration(id) * time.Hour),
	}
	if h != nil {
		m.Status = models.MatchStatusFinished
	}
	return m
}

func knockoutMatch(id int, phase, home, away string, date time.Time) models.Match {
	return models.Match{
		ID:           id,
		TournamentID: fixtureTournament,
		HomeTeam:     home,
		AwayTeam:     away,
		Status:       models.MatchStatusScheduled,
		Phase:        phase,
		Date:         date,
	}
}

func fixtureMatches() []models.Match {
	return []models.Match{
		groupMatch(101, "A", "ARG", "MEX", ip(2), ip(0)),
		groupMatch(102, "A", "POL", "KSA", nil, nil),
		knockoutMatch(1, models.PhaseRound16, "ARG", "AUS", kickoff),
		knockoutMatch(2, models.PhaseRound16, "FRA", "POL", kickoff.Add(3*time.Hour)),
		knockoutMatch(3, models.PhaseQuarterFinal, "W1", "W2", kickoff.Add(4*24*time.Hour)),
	}
}

func fixtureCatalog() fakeCatalog {
	return fakeCatalog{format: brackets.ContinentalFormat, lead: 30 * time.Minute}
}
