package achievement_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/trophy/achievement"
	"github.com/lixenwraith/trophy/persistence"
)

func TestAchievedSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "achievements.json")
	ctx := context.Background()

	// First session: "A" unlocks on frame 2, "B" never does
	reg := achievement.NewRegistry(persistence.NewFileStore(path))
	require.NoError(t, reg.Load(ctx))

	frame := 0
	require.NoError(t, reg.Register(achievement.New("A", func() bool { return frame >= 2 })))
	require.NoError(t, reg.Register(achievement.New("B", func() bool { return false })))

	var seen []string
	p := achievement.NewPoller(reg, achievement.NotifierFunc(func(u achievement.Unlock) {
		seen = append(seen, u.Definition.Name)
	}))
	for frame = 1; frame <= 4; frame++ {
		p.Poll()
	}
	assert.Equal(t, []string{"A"}, seen)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"achievements_got_names": ["A"]}`, string(data))

	// Second session: both conditions true from the start, only "B" notifies
	reg2 := achievement.NewRegistry(persistence.NewFileStore(path))
	require.NoError(t, reg2.Load(ctx))
	assert.True(t, reg2.WasTriggered("A"))

	require.NoError(t, reg2.Register(achievement.New("A", func() bool { return true })))
	require.NoError(t, reg2.Register(achievement.New("B", func() bool { return true })))

	seen = nil
	p2 := achievement.NewPoller(reg2, achievement.NotifierFunc(func(u achievement.Unlock) {
		seen = append(seen, u.Definition.Name)
	}))
	p2.Poll()
	p2.Poll()
	assert.Equal(t, []string{"B"}, seen)
	assert.Equal(t, []string{"A", "B"}, reg2.Achieved())
}

func TestCorruptRecordIsReplaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "achievements.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	reg := achievement.NewRegistry(persistence.NewFileStore(path))
	require.NoError(t, reg.Load(context.Background()))
	assert.Empty(t, reg.Achieved())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"achievements_got_names": []}`, string(data))
}

func TestAsyncWriterPersistsUnlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "achievements.json")
	store := persistence.NewFileStore(path)
	writer := persistence.NewWriter(store, nil, nil)
	require.NoError(t, writer.Start())

	reg := achievement.NewRegistry(store, achievement.WithSaver(writer))
	require.NoError(t, reg.Load(context.Background()))
	require.NoError(t, reg.Register(achievement.New("Welcome!", func() bool { return true })))

	achievement.NewPoller(reg, nil).Poll()
	require.NoError(t, writer.Stop())

	names, err := persistence.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Welcome!"}, names)
}
