package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"expenses_bot/internal/domain"
	"expenses_bot/internal/repository"
)

type memTxStore struct {
	mu      sync.Mutex
	now     func() time.Time
	next    map[int64]int64
	rows    map[int64]map[int64]*domain.Transaction
	sources map[string][2]int64 // dedup key -> (user, id)

	failWrites error
}

func newMemTxStore(now func() time.Time) *memTxStore {
	return &memTxStore{
		now:     now,
		next:    map[int64]int64{},
		rows:    map[int64]map[int64]*domain.Transaction{},
		sources: map[string][2]int64{},
	}
}

func sourceKeys(keys domain.DedupKeys) []string {
	var out []string
	if keys.UpdateID != nil {
		out = append(out, fmt.Sprintf("u:%d", *keys.UpdateID))
	}
	if keys.HasChatMessage() {
		out = append(out, fmt.Sprintf("m:%d:%d", *keys.ChatID, *keys.MessageID))
	}
	return out
}

func (m *memTxStore) Insert(_ context.Context, userID int64, p domain.Proposal, keys domain.DedupKeys) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return 0, false, m.failWrites
	}

	for _, k := range sourceKeys(keys) {
		if hit, ok := m.sources[k]; ok && hit[0] == userID {
			return hit[1], true, nil
		}
	}

	m.next[userID]++
	id := m.next[userID]
	if m.rows[userID] == nil {
		m.rows[userID] = map[int64]*domain.Transaction{}
	}
	m.rows[userID][id] = &domain.Transaction{
		ID:          id,
		UserID:      userID,
		Amount:      p.Amount,
		Direction:   p.Direction,
		Person:      p.Person,
		Description: p.Description,
		Raw:         p.Raw,
		CreatedAt:   m.now(),
	}
	for _, k := range sourceKeys(keys) {
		m.sources[k] = [2]int64{userID, id}
	}
	return id, false, nil
}

func (m *memTxStore) Update(_ context.Context, userID, id int64, p domain.Proposal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return false, m.failWrites
	}
	tx, ok := m.rows[userID][id]
	if !ok {
		return false, nil
	}
	tx.Amount, tx.Direction, tx.Person, tx.Description, tx.Raw = p.Amount, p.Direction, p.Person, p.Description, p.Raw
	return true, nil
}

func (m *memTxStore) Delete(_ context.Context, userID, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return false, m.failWrites
	}
	if _, ok := m.rows[userID][id]; !ok {
		return false, nil
	}
	delete(m.rows[userID], id)
	return true, nil
}

func (m *memTxStore) Get(_ context.Context, userID, id int64) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.rows[userID][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (m *memTxStore) ListRecent(_ context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Transaction
	for _, tx := range m.rows[userID] {
		cp := *tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memTxStore) all(userID int64) []*domain.Transaction {
	out, _ := m.ListRecent(context.Background(), userID, 1000)
	return out
}

type memFlowStore struct {
	mu      sync.Mutex
	now     func() time.Time
	flows   map[int64]*domain.StoredFlow
	corrupt map[int64]bool
}

func newMemFlowStore(now func() time.Time) *memFlowStore {
	return &memFlowStore{now: now, flows: map[int64]*domain.StoredFlow{}, corrupt: map[int64]bool{}}
}

func (m *memFlowStore) Get(_ context.Context, userID int64) (*domain.StoredFlow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.corrupt[userID] {
		return nil, repository.ErrCorruptFlow
	}
	s, ok := m.flows[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memFlowStore) Save(_ context.Context, userID, channelID int64, f *domain.Flow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flows[userID] = &domain.StoredFlow{Flow: *f, ChannelID: channelID, UpdatedAt: m.now()}
	return nil
}

func (m *memFlowStore) Delete(_ context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, existed := m.flows[userID]
	delete(m.flows, userID)
	delete(m.corrupt, userID)
	return existed, nil
}

func (m *memFlowStore) get(userID int64) *domain.StoredFlow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flows[userID]
}

type stubSummaryStore struct {
	start, end time.Time
	summary    *domain.Summary
}

func (s *stubSummaryStore) Summary(_ context.Context, _ int64, start, end time.Time) (*domain.Summary, error) {
	s.start, s.end = start, end
	if s.summary != nil {
		return s.summary, nil
	}
	return &domain.Summary{Start: start, End: end, TotalsByDirection: map[domain.Direction]int64{}}, nil
}

type recordingReplier struct {
	mu      sync.Mutex
	replies []domain.OutgoingReply
}

func (r *recordingReplier) Reply(_ context.Context, out domain.OutgoingReply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, out)
	return nil
}

func (r *recordingReplier) last() domain.OutgoingReply {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return domain.OutgoingReply{}
	}
	return r.replies[len(r.replies)-1]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type memAuditStore struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	err     error
}

func (m *memAuditStore) Create(_ context.Context, entry *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAuditStore) actions(userID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, fmt.Sprintf("%s #%d", e.Action, e.RecordID))
		}
	}
	return out
}
