package controllers

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/popup-pos/feed"
	"github.com/yeremiapane/popup-pos/models"
	"github.com/yeremiapane/popup-pos/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamController bridges the in-process feed hub to websocket clients:
// each connected terminal or kitchen screen gets the campaign's order
// snapshots as {event, data} envelopes.
type StreamController struct {
	Hub *feed.Hub
}

func NewStreamController(hub *feed.Hub) *StreamController {
	return &StreamController{Hub: hub}
}

// Stream -> GET /ws?campaign_id=N
func (sc *StreamController) Stream(c *gin.Context) {
	campaignID, err := strconv.Atoi(c.Query("campaign_id"))
	if err != nil || campaignID < 1 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	// Gorilla allows one concurrent writer; feed callbacks fire from the
	// monitor goroutine.
	var writeMu sync.Mutex
	send := func(event feed.EventType, order *models.Order) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(feed.Message{Event: event, Data: order}); err != nil {
			utils.ErrorLogger.Printf("write feed event to client: %v", err)
		}
	}

	unsubscribe := sc.Hub.Subscribe(uint(campaignID), send)

	// Block on the read side until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	unsubscribe()
	conn.Close()
}
