package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/popup-pos/models"
)

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"all new", []string{"new", "new"}, models.OrderStatusNew},
		{"single new", []string{"new"}, models.OrderStatusNew},
		{"one in progress", []string{"new", "in_progress"}, models.OrderStatusInProgress},
		{"done mixed with new", []string{"new", "done"}, models.OrderStatusInProgress},
		{"picked up mixed with new", []string{"new", "picked_up"}, models.OrderStatusInProgress},
		{"all done", []string{"done", "done"}, models.OrderStatusReady},
		{"done and picked up mix is ready", []string{"done", "picked_up"}, models.OrderStatusReady},
		{"all picked up", []string{"picked_up", "picked_up"}, models.OrderStatusPickedUp},
		{"all cancelled", []string{"cancelled", "cancelled"}, models.OrderStatusCancelled},
		{"cancelled items excluded", []string{"cancelled", "done"}, models.OrderStatusReady},
		{"cancelled plus picked up", []string{"cancelled", "picked_up"}, models.OrderStatusPickedUp},
		{"cancelled plus new", []string{"cancelled", "new"}, models.OrderStatusNew},
		{"in progress beats done", []string{"in_progress", "done"}, models.OrderStatusInProgress},
		{"empty set", nil, models.OrderStatusNew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOrderStatus(tt.statuses))
		})
	}
}

// The classification is a function of the multiset; input order must not
// matter.
func TestDeriveOrderStatusOrderIndependent(t *testing.T) {
	statuses := []string{"new", "in_progress", "done", "picked_up", "cancelled", "done"}
	want := DeriveOrderStatus(statuses)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		shuffled := make([]string, len(statuses))
		copy(shuffled, statuses)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, DeriveOrderStatus(shuffled))
	}
}

// Every non-empty multiset that is not all cancelled must land in exactly
// one of the four live statuses.
func TestDeriveOrderStatusTotal(t *testing.T) {
	domain := []string{"new", "in_progress", "done", "picked_up", "cancelled"}
	live := map[string]bool{
		models.OrderStatusNew:        true,
		models.OrderStatusInProgress: true,
		models.OrderStatusReady:      true,
		models.OrderStatusPickedUp:   true,
	}

	for _, a := range domain {
		for _, b := range domain {
			for _, c := range domain {
				statuses := []string{a, b, c}
				got := DeriveOrderStatus(statuses)
				if a == "cancelled" && b == "cancelled" && c == "cancelled" {
					assert.Equal(t, models.OrderStatusCancelled, got)
					continue
				}
				assert.True(t, live[got], "statuses %v derived %q", statuses, got)
			}
		}
	}
}
