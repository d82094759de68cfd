package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/popup-pos/models"
)

func TestHubScopesByCampaign(t *testing.T) {
	hub := NewHub()

	var gotOne, gotTwo []uint
	hub.Subscribe(1, func(event EventType, order *models.Order) {
		gotOne = append(gotOne, order.ID)
	})
	hub.Subscribe(2, func(event EventType, order *models.Order) {
		gotTwo = append(gotTwo, order.ID)
	})

	hub.PublishOrder(EventInserted, 1, &models.Order{ID: 10, CampaignID: 1})
	hub.PublishOrder(EventInserted, 2, &models.Order{ID: 20, CampaignID: 2})

	assert.Equal(t, []uint{10}, gotOne)
	assert.Equal(t, []uint{20}, gotTwo)
}

// Campaign 0 marks an event whose campaign is unknown (a deleted row);
// everyone gets it and reconciles by ID.
func TestHubDeliversUnscopedEventsToAll(t *testing.T) {
	hub := NewHub()

	var gotOne, gotTwo []EventType
	hub.Subscribe(1, func(event EventType, order *models.Order) {
		gotOne = append(gotOne, event)
	})
	hub.Subscribe(2, func(event EventType, order *models.Order) {
		gotTwo = append(gotTwo, event)
	})

	hub.PublishOrder(EventDeleted, 0, &models.Order{ID: 5})

	assert.Equal(t, []EventType{EventDeleted}, gotOne)
	assert.Equal(t, []EventType{EventDeleted}, gotTwo)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()

	var got int
	unsubscribe := hub.Subscribe(1, func(event EventType, order *models.Order) {
		got++
	})

	hub.PublishOrder(EventUpdated, 1, &models.Order{ID: 1, CampaignID: 1})
	unsubscribe()
	hub.PublishOrder(EventUpdated, 1, &models.Order{ID: 1, CampaignID: 1})

	assert.Equal(t, 1, got)
}

func TestHubItemSubscribers(t *testing.T) {
	hub := NewHub()

	var orderEvents, itemEvents int
	hub.Subscribe(1, func(event EventType, order *models.Order) {
		orderEvents++
	})
	unsubscribe := hub.SubscribeItems(func(event EventType, order *models.Order) {
		itemEvents++
	})

	hub.PublishItems(EventUpdated, &models.Order{ID: 1, CampaignID: 1})
	assert.Equal(t, 0, orderEvents, "item events do not reach order subscribers")
	assert.Equal(t, 1, itemEvents)

	unsubscribe()
	hub.PublishItems(EventUpdated, &models.Order{ID: 1, CampaignID: 1})
	assert.Equal(t, 1, itemEvents)
}

// A callback may unsubscribe itself during delivery.
func TestHubReentrantUnsubscribe(t *testing.T) {
	hub := NewHub()

	var got int
	var unsubscribe func()
	unsubscribe = hub.Subscribe(1, func(event EventType, order *models.Order) {
		got++
		unsubscribe()
	})

	hub.PublishOrder(EventUpdated, 1, &models.Order{ID: 1, CampaignID: 1})
	hub.PublishOrder(EventUpdated, 1, &models.Order{ID: 1, CampaignID: 1})

	assert.Equal(t, 1, got)
}
