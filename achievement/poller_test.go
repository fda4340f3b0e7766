package achievement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector records notifications in delivery order
type collector struct {
	got []Unlock
}

func (c *collector) Notify(u Unlock) { c.got = append(c.got, u) }

func (c *collector) names() []string {
	out := make([]string, len(c.got))
	for i, u := range c.got {
		out[i] = u.Definition.Name
	}
	return out
}

func newTestPoller(t *testing.T, store Store, opts ...RegistryOption) (*Registry, *Poller, *collector) {
	t.Helper()
	reg := NewRegistry(store, opts...)
	require.NoError(t, reg.Load(context.Background()))
	c := &collector{}
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return reg, NewPoller(reg, c, WithClock(func() time.Time { return fixed })), c
}

func TestPollTriggersOnFirstTrueFrame(t *testing.T) {
	reg, p, c := newTestPoller(t, &memStore{})

	frames := 0
	require.NoError(t, reg.Register(New("Welcome!", func() bool { return frames >= 3 })))

	for i := 0; i < 5; i++ {
		frames++
		p.Poll()
	}

	require.Len(t, c.got, 1)
	assert.Equal(t, "Welcome!", c.got[0].Definition.Name)
	assert.Equal(t, int64(3), c.got[0].Frame)
	assert.True(t, reg.WasTriggered("Welcome!"))
	assert.Empty(t, reg.Pending())
	assert.Equal(t, int64(5), p.Frame())
}

func TestPollNeverTriggersTwice(t *testing.T) {
	store := &memStore{}
	reg, p, c := newTestPoller(t, store)
	require.NoError(t, reg.Register(New("A", always)))

	for i := 0; i < 10; i++ {
		p.Poll()
	}
	assert.Len(t, c.got, 1)

	// Re-registering the achieved name is ignored
	require.NoError(t, reg.Register(New("A", always)))
	p.Poll()
	assert.Len(t, c.got, 1)
	assert.Equal(t, []string{"A"}, store.names)
}

func TestPollOrderAndSurvivors(t *testing.T) {
	reg, p, c := newTestPoller(t, &memStore{})

	bReady := false
	require.NoError(t, reg.Register(New("A", always)))
	require.NoError(t, reg.Register(New("B", func() bool { return bReady })))
	require.NoError(t, reg.Register(New("C", always)))
	require.NoError(t, reg.Register(New("D", never)))

	unlocks := p.Poll()
	require.Len(t, unlocks, 2)
	assert.Equal(t, []string{"A", "C"}, c.names())
	assert.Equal(t, []string{"B", "D"}, reg.PendingNames())

	bReady = true
	p.Poll()
	assert.Equal(t, []string{"A", "C", "B"}, c.names())
	assert.Equal(t, []string{"D"}, reg.PendingNames())
	assert.Equal(t, []string{"A", "C", "B"}, reg.Achieved())
}

func TestPollSavesOncePerFrameWithUnlocks(t *testing.T) {
	saver := &recordingSaver{}
	reg, p, _ := newTestPoller(t, &memStore{}, WithSaver(saver))

	require.NoError(t, reg.Register(New("A", always)))
	require.NoError(t, reg.Register(New("B", always)))
	require.NoError(t, reg.Register(New("C", never)))

	p.Poll()
	p.Poll()
	p.Poll()

	require.Len(t, saver.submits, 1)
	assert.Equal(t, []string{"A", "B"}, saver.submits[0])
}

func TestPollSubmitsSnapshotCopies(t *testing.T) {
	saver := &recordingSaver{}
	reg, p, _ := newTestPoller(t, &memStore{}, WithSaver(saver))

	require.NoError(t, reg.Register(New("A", always)))
	p.Poll()
	require.NoError(t, reg.Register(New("B", always)))
	p.Poll()

	require.Len(t, saver.submits, 2)
	assert.Equal(t, []string{"A"}, saver.submits[0])
	assert.Equal(t, []string{"A", "B"}, saver.submits[1])
}

func TestPollDropsAlreadyAchievedPending(t *testing.T) {
	saver := &recordingSaver{}
	reg, p, c := newTestPoller(t, &memStore{}, WithSaver(saver))

	require.NoError(t, reg.Register(New("A", always)))
	reg.markAchieved("A")

	assert.Empty(t, p.Poll())
	assert.Empty(t, c.got)
	assert.Empty(t, reg.Pending())
	assert.Empty(t, saver.submits)
}

func TestPollRecoversConditionPanic(t *testing.T) {
	reg, p, c := newTestPoller(t, &memStore{})

	calls := 0
	require.NoError(t, reg.Register(New("Boom", func() bool {
		calls++
		if calls < 3 {
			panic("not ready")
		}
		return true
	})))
	require.NoError(t, reg.Register(New("Fine", always)))

	p.Poll()
	assert.Equal(t, []string{"Fine"}, c.names())
	assert.Equal(t, []string{"Boom"}, reg.PendingNames())

	p.Poll()
	p.Poll()
	assert.Equal(t, []string{"Fine", "Boom"}, c.names())
	assert.Equal(t, int64(2), reg.Metrics().Ints.Get("achievement.condition_panics").Load())
}

func TestPollWithoutPending(t *testing.T) {
	_, p, c := newTestPoller(t, &memStore{})
	assert.Nil(t, p.Poll())
	assert.Empty(t, c.got)
	assert.Equal(t, int64(1), p.Frame())
}

func TestPollNilNotifier(t *testing.T) {
	reg := NewRegistry(&memStore{})
	p := NewPoller(reg, nil)
	require.NoError(t, reg.Register(New("A", always)))

	unlocks := p.Poll()
	require.Len(t, unlocks, 1)
	assert.True(t, reg.WasTriggered("A"))
}

func TestPollMetrics(t *testing.T) {
	reg, p, _ := newTestPoller(t, &memStore{})
	require.NoError(t, reg.Register(New("A", always)))
	require.NoError(t, reg.Register(New("B", never)))
	p.Poll()

	m := reg.Metrics()
	assert.Equal(t, int64(1), m.Ints.Get("achievement.unlocks").Load())
	assert.Equal(t, int64(1), m.Ints.Get("achievement.pending").Load())
	assert.Equal(t, int64(1), m.Ints.Get("achievement.achieved").Load())
	assert.Equal(t, "A", m.Strings.Get("achievement.last").Load())
}

func TestUnlockCarriesClock(t *testing.T) {
	reg, p, c := newTestPoller(t, &memStore{})
	require.NoError(t, reg.Register(New("A", always)))
	p.Poll()

	require.Len(t, c.got, 1)
	assert.Equal(t, 2024, c.got[0].At.Year())
}

func TestNotifiersFanOut(t *testing.T) {
	var order []string
	ns := Notifiers{
		NotifierFunc(func(u Unlock) { order = append(order, "first:"+u.Definition.Name) }),
		nil,
		NotifierFunc(func(u Unlock) { order = append(order, "second:"+u.Definition.Name) }),
	}
	ns.Notify(Unlock{Definition: Definition{Name: "A"}})
	assert.Equal(t, []string{"first:A", "second:A"}, order)
}

func TestFrameReadableFromOtherGoroutines(t *testing.T) {
	reg, p, _ := newTestPoller(t, &memStore{})
	require.NoError(t, reg.Register(New("Never", never)))

	const polls = 1000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		last := int64(0)
		for i := 0; i < polls; i++ {
			f := p.Frame()
			assert.GreaterOrEqual(t, f, last)
			last = f
		}
	}()

	for i := 0; i < polls; i++ {
		p.Poll()
	}
	wg.Wait()
	assert.Equal(t, int64(polls), p.Frame())
}
