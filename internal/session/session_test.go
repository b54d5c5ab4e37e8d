package session

import (
	"testing"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(now *time.Time) *Store {
	st := NewStore(4)
	st.now = func() time.Time { return *now }
	return st
}

func TestCreateAndGet(t *testing.T) {
	st := NewStore(0)
	s := st.Create()

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, domain.PageHome, got.Page())

	_, err = st.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	st.Delete(s.ID)
	assert.Equal(t, 0, st.Len())
}

func TestSessionsAreIndependent(t *testing.T) {
	st := NewStore(0)
	a, b := st.Create(), st.Create()
	assert.NotEqual(t, a.ID, b.ID)

	a.SetDataset(&domain.Dataset{Name: "a.csv"})
	_, err := b.Dataset()
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestNavigateRequiresDataset(t *testing.T) {
	s := NewStore(0).Create()

	assert.ErrorIs(t, s.Navigate(domain.PageDataAnalysis, ""), ErrNoDataset)
	assert.ErrorIs(t, s.Navigate(domain.Page("Settings"), ""), ErrUnknownPage)

	s.SetDataset(&domain.Dataset{Name: "x"})
	require.NoError(t, s.Navigate(domain.PageInventoryStrategy, domain.InventoryViewPrediction))

	state := s.Snapshot()
	assert.Equal(t, domain.PageInventoryStrategy, state.Page)
	assert.Equal(t, domain.InventoryViewPrediction, state.InventoryView)
	require.NotNil(t, state.Dataset)
	assert.Equal(t, "x", state.Dataset.Name)

	require.NoError(t, s.Navigate(domain.PageHome, ""))
	assert.Equal(t, domain.InventoryViewPrediction, s.Snapshot().InventoryView)
}

func TestSetDatasetResetsDerivedState(t *testing.T) {
	s := NewStore(0).Create()
	s.SetDataset(&domain.Dataset{Name: "one"})
	s.SetForecastInputs([]domain.ForecastInput{{Year: 2025, Month: 1}})
	s.SetSimulation(&domain.SimulationResult{})

	s.SetDataset(&domain.Dataset{Name: "two"})

	assert.Nil(t, s.ForecastInputs())
	assert.Nil(t, s.Simulation())
}

func TestChatGuard(t *testing.T) {
	s := NewStore(0).Create()

	require.True(t, s.TryBeginChat())
	assert.False(t, s.TryBeginChat())
	assert.True(t, s.Snapshot().ChatPending)

	s.EndChat()
	assert.False(t, s.Snapshot().ChatPending)
	assert.True(t, s.TryBeginChat())
	s.EndChat()
}

func TestChatHistoryIsBounded(t *testing.T) {
	now := time.Now()
	s := testStore(&now).Create()

	for i := 0; i < 6; i++ {
		s.AppendChat(domain.ChatMessage{Role: domain.RoleUser, Content: string(rune('a' + i))})
	}

	history := s.ChatHistory()
	require.Len(t, history, 4)
	assert.Equal(t, "c", history[0].Content)
	assert.Equal(t, "f", history[3].Content)

	history[0].Content = "mutated"
	assert.Equal(t, "c", s.ChatHistory()[0].Content)

	s.ClearChat()
	assert.Empty(t, s.ChatHistory())
}

func TestEvictIdle(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	st := testStore(&now)

	old := st.Create()
	now = now.Add(90 * time.Minute)
	fresh := st.Create()

	assert.Equal(t, 1, st.EvictIdle(time.Hour))

	_, err := st.Get(old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestStartJanitorRejectsBadSpec(t *testing.T) {
	_, err := NewStore(0).StartJanitor("not a schedule", time.Minute)
	assert.Error(t, err)

	c, err := NewStore(0).StartJanitor("@every 1h", time.Minute)
	require.NoError(t, err)
	c.Stop()
}
