package observable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tiliavir/owl-time-keeper/internal/observable"
)

func TestChannelDeliversToTopicOnly(t *testing.T) {
	ch := observable.NewChannel()
	var a, b []any
	ch.Subscribe("a", func(p any) { a = append(a, p) })
	ch.Subscribe("b", func(p any) { b = append(b, p) })

	ch.Publish("a", 1)
	ch.Publish("c", 2)

	assert.Equal(t, []any{1}, a)
	assert.Empty(t, b)
}

func TestChannelUnsubscribeIsIdempotent(t *testing.T) {
	ch := observable.NewChannel()
	var got []any
	tok := ch.Subscribe("a", func(p any) { got = append(got, p) })
	other := ch.Subscribe("a", func(any) {})

	ch.Unsubscribe(tok)
	ch.Unsubscribe(tok)
	ch.Publish("a", 1)

	assert.Empty(t, got)
	assert.True(t, ch.HasSubscribers("a"))
	ch.Unsubscribe(other)
	assert.False(t, ch.HasSubscribers("a"))
}

func TestChannelUnsubscribeDuringDelivery(t *testing.T) {
	ch := observable.NewChannel()
	var second int
	var tok observable.Token
	ch.Subscribe("a", func(any) { ch.Unsubscribe(tok) })
	tok = ch.Subscribe("a", func(any) { second++ })

	ch.Publish("a", 1)
	assert.Equal(t, 0, second, "handler removed earlier in the same delivery is skipped")
}

func TestChannelHandlersAddedAfterPublishMissIt(t *testing.T) {
	ch := observable.NewChannel()
	var late int
	ch.Subscribe("a", func(any) {
		ch.Subscribe("a", func(any) { late++ })
	})

	ch.Publish("a", 1)
	assert.Equal(t, 0, late)
	ch.Publish("a", 2)
	assert.Equal(t, 1, late)
}

func TestChannelDispatchRunsQueuedWorkInOrder(t *testing.T) {
	ch := observable.NewChannel()
	var order []string
	ch.Dispatch(func() {
		order = append(order, "outer-start")
		ch.Dispatch(func() { order = append(order, "nested") })
		order = append(order, "outer-end")
	})
	ch.Dispatch(func() { order = append(order, "next") })

	assert.Equal(t, []string{"outer-start", "outer-end", "nested", "next"}, order)
}

func TestChannelRecoversAfterHandlerPanic(t *testing.T) {
	ch := observable.NewChannel()
	ch.Subscribe("boom", func(any) { panic("listener failure") })
	assert.Panics(t, func() { ch.Publish("boom", nil) })

	var got []any
	ch.Subscribe("ok", func(p any) { got = append(got, p) })
	ch.Publish("ok", 1)
	assert.Equal(t, []any{1}, got)
}

func TestChannelTopics(t *testing.T) {
	ch := observable.NewChannel()
	ch.Subscribe("timeRecords/2026-02-28", func(any) {})
	ch.Subscribe("timeRecords/2026-02-27", func(any) {})
	ch.Subscribe("tasks", func(any) {})

	assert.Equal(t, []string{"timeRecords/2026-02-27", "timeRecords/2026-02-28"}, ch.Topics("timeRecords/"))
	assert.Len(t, ch.Topics(""), 3)
}
