package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
)

func ctxNamed(short string, lifespan int) dialogflow.Context {
	return dialogflow.Context{
		Name:          "line/U1/contexts/" + short,
		LifespanCount: lifespan,
		Parameters:    dialogflow.Parameters{"category": "วัด"},
	}
}

func TestSessionStoreAgesAndOverrides(t *testing.T) {
	t.Parallel()

	s := NewSessionStore()
	assert.Nil(t, s.Load("line/U1"))

	s.Save("line/U1", nil, []dialogflow.Context{ctxNamed("awaiting_district", 3), ctxNamed("route_area_ctx", 5)})
	first := s.Load("line/U1")
	require.Len(t, first, 2)

	// A turn that sets nothing ages every context by one.
	s.Save("line/U1", first, nil)
	second := s.Load("line/U1")
	require.Len(t, second, 2)
	assert.Equal(t, 2, second[0].LifespanCount)
	assert.Equal(t, 4, second[1].LifespanCount)

	// Clearing removes; re-setting restores the full lifespan.
	s.Save("line/U1", second, []dialogflow.Context{ctxNamed("awaiting_district", 0), ctxNamed("route_area_ctx", 5)})
	third := s.Load("line/U1")
	require.Len(t, third, 1)
	assert.Equal(t, "route_area_ctx", third[0].ShortName())
	assert.Equal(t, 5, third[0].LifespanCount)
}

func TestSessionStoreDropsEmptyAndExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	s := NewSessionStore()
	s.now = func() time.Time { return now }

	s.Save("line/U1", nil, []dialogflow.Context{ctxNamed("awaiting_location", 1)})
	s.Save("line/U2", nil, []dialogflow.Context{ctxNamed("awaiting_location", 3)})
	require.Equal(t, 2, s.Len())

	// Lifespan 1 is used up by the next turn.
	s.Save("line/U1", s.Load("line/U1"), nil)
	assert.Nil(t, s.Load("line/U1"))

	now = now.Add(sessionTTL + time.Second)
	s.Sweep()
	assert.Zero(t, s.Len())
	assert.Nil(t, s.Load("line/U2"))
}
