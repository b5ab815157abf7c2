package eventstest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
)

func TestEmit_RecordsAndSwallowsErrors(t *testing.T) {
	rec := &Recorder{}
	events.Emit(context.Background(), rec, events.TopicProducts, events.NewEvent(events.ProductCreated, "p1", nil))

	got := rec.Events()
	require.Len(t, got, 1)
	assert.Equal(t, events.TopicProducts, got[0].Topic)
	assert.Equal(t, "p1", got[0].Key)
	assert.Equal(t, []string{events.ProductCreated}, rec.Types())

	rec.Err = errors.New("broker down")
	assert.NotPanics(t, func() {
		events.Emit(context.Background(), rec, events.TopicProducts, events.NewEvent(events.ProductDeleted, "p1", nil))
	})
	assert.Len(t, rec.Events(), 1)
}
