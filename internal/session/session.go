// Package session holds the per-user application state: current page, the
// loaded dataset, chat history and planning inputs.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"golang.org/x/sync/semaphore"
)

var (
	ErrNoDataset   = errors.New("no dataset loaded for this session")
	ErrUnknownPage = errors.New("unknown page")
)

// State is a read-only snapshot of a session.
type State struct {
	ID            string               `json:"id"`
	Page          domain.Page          `json:"page"`
	InventoryView domain.InventoryView `json:"inventory_view"`
	Dataset       *domain.DatasetMeta  `json:"dataset,omitempty"`
	ChatTurns     int                  `json:"chat_turns"`
	ChatPending   bool                 `json:"chat_pending"`
	HasSimulation bool                 `json:"has_simulation"`
	CreatedAt     time.Time            `json:"created_at"`
	LastSeen      time.Time            `json:"last_seen"`
}

type Session struct {
	ID string

	mu             sync.RWMutex
	page           domain.Page
	inventoryView  domain.InventoryView
	dataset        *domain.Dataset
	chat           []domain.ChatMessage
	maxChat        int
	forecastInputs []domain.ForecastInput
	simulation     *domain.SimulationResult
	createdAt      time.Time
	lastSeen       time.Time

	chatSem *semaphore.Weighted
	now     func() time.Time
}

func newSession(id string, maxChat int, now func() time.Time) *Session {
	t := now()
	return &Session{
		ID:            id,
		page:          domain.PageHome,
		inventoryView: domain.InventoryViewDashboard,
		maxChat:       maxChat,
		createdAt:     t,
		lastSeen:      t,
		chatSem:       semaphore.NewWeighted(1),
		now:           now,
	}
}

func (s *Session) touch() {
	s.lastSeen = s.now()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		ID:            s.ID,
		Page:          s.page,
		InventoryView: s.inventoryView,
		ChatTurns:     len(s.chat),
		HasSimulation: s.simulation != nil,
		CreatedAt:     s.createdAt,
		LastSeen:      s.lastSeen,
	}
	if s.dataset != nil {
		meta := s.dataset.Meta()
		st.Dataset = &meta
	}
	if s.chatSem.TryAcquire(1) {
		s.chatSem.Release(1)
	} else {
		st.ChatPending = true
	}
	return st
}

// Navigate switches page. Pages other than Home need a dataset. An empty
// view leaves the inventory view unchanged.
func (s *Session) Navigate(page domain.Page, view domain.InventoryView) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch page {
	case domain.PageHome, domain.PageDataAnalysis, domain.PageCustomerAnalysis, domain.PageInventoryStrategy:
	default:
		return ErrUnknownPage
	}
	if page.RequiresData() && s.dataset == nil {
		return ErrNoDataset
	}

	s.page = page
	if view != "" {
		s.inventoryView = view
	}
	s.touch()
	return nil
}

// Page returns the current page.
func (s *Session) Page() domain.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// SetDataset replaces the loaded dataset and drops results derived from the old one.
func (s *Session) SetDataset(ds *domain.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dataset = ds
	s.forecastInputs = nil
	s.simulation = nil
	s.touch()
}

// Dataset returns the loaded dataset or ErrNoDataset.
func (s *Session) Dataset() (*domain.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	return s.dataset, nil
}

// TryBeginChat reserves the single in-flight chat slot.
func (s *Session) TryBeginChat() bool {
	return s.chatSem.TryAcquire(1)
}

// EndChat releases the slot taken by TryBeginChat.
func (s *Session) EndChat() {
	s.chatSem.Release(1)
}

// AppendChat records messages, keeping at most the configured number of turns.
func (s *Session) AppendChat(msgs ...domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chat = append(s.chat, msgs...)
	if s.maxChat > 0 && len(s.chat) > s.maxChat {
		s.chat = append([]domain.ChatMessage(nil), s.chat[len(s.chat)-s.maxChat:]...)
	}
	s.touch()
}

// ChatHistory returns a copy of the conversation so far.
func (s *Session) ChatHistory() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ChatMessage, len(s.chat))
	copy(out, s.chat)
	return out
}

func (s *Session) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = nil
	s.touch()
}

func (s *Session) SetForecastInputs(rows []domain.ForecastInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecastInputs = append([]domain.ForecastInput(nil), rows...)
	s.touch()
}

// ForecastInputs returns the stored planning table, nil when none was saved.
func (s *Session) ForecastInputs() []domain.ForecastInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.forecastInputs == nil {
		return nil
	}
	return append([]domain.ForecastInput(nil), s.forecastInputs...)
}

func (s *Session) SetSimulation(res *domain.SimulationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulation = res
	s.touch()
}

func (s *Session) Simulation() *domain.SimulationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simulation
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}
