package events

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// TestEventPublishingAndSubscribing creates EventEmitter objects, subscribes EventHandler callbacks to them, and
// ensures that the events are received as intended.
func TestEventPublishingAndSubscribing(t *testing.T) {
	// Define some event types
	type TestEventA struct{}
	type TestEventB struct{}

	// Create event emitters for both events.
	eventAEmitter := EventEmitter[TestEventA]{}
	eventBEmitter := EventEmitter[TestEventB]{}

	// Create counters to track event callbacks.
	var eventAPublishCount, eventBPublishCount, eventAGlobalPublishCount int

	// Create our callback methods for each event, where we update our count of published events.
	eventAEmitter.Subscribe(func(event TestEventA) error {
		eventAPublishCount++
		return nil
	})
	eventBEmitter.Subscribe(func(event TestEventB) error {
		eventBPublishCount++
		return nil
	})
	SubscribeAny(func(event TestEventA) error {
		eventAGlobalPublishCount++
		return nil
	})

	// Publish events a given amount of times.
	const expectedEventAPublishCount = 3
	const expectedEventBPublishCount = 5
	for i := 0; i < expectedEventAPublishCount; i++ {
		assert.NoError(t, eventAEmitter.Publish(TestEventA{}))
	}
	for i := 0; i < expectedEventBPublishCount; i++ {
		assert.NoError(t, eventBEmitter.Publish(TestEventB{}))
	}

	// Assert we received the expected amount of callbacks. Global handlers for event A should have fired once
	// per publish of event A only.
	assert.EqualValues(t, expectedEventAPublishCount, eventAPublishCount)
	assert.EqualValues(t, expectedEventBPublishCount, eventBPublishCount)
	assert.EqualValues(t, expectedEventAPublishCount, eventAGlobalPublishCount)
}

// TestEventHandlerErrorPropagation ensures an error returned by a subscribed EventHandler is surfaced by Publish
// and stops the remaining handlers from running.
func TestEventHandlerErrorPropagation(t *testing.T) {
	// Define an event type and an emitter with a failing handler followed by a counting handler.
	type TestEventC struct{}
	emitter := EventEmitter[TestEventC]{}
	laterHandlerCalls := 0
	emitter.Subscribe(func(event TestEventC) error {
		return errors.New("handler failure")
	})
	emitter.Subscribe(func(event TestEventC) error {
		laterHandlerCalls++
		return nil
	})

	// Publish and verify the error propagated and the later handler never ran.
	err := emitter.Publish(TestEventC{})
	assert.Error(t, err)
	assert.EqualValues(t, 0, laterHandlerCalls)
}
