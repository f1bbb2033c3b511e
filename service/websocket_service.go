package service

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/contract-analysis-be/types"
)

// Keepalive timings. The read deadline only advances when the client answers
// our pings, so the ping period must stay comfortably inside the pong wait.
// Variables rather than constants so tests can shrink them.
var (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

// WebSocketService streams grounded answers over a websocket. The client
// sends one AskRequest, then receives the StreamEvent sequence as JSON
// messages; closing the connection cancels the in-flight generation call.
type WebSocketService struct {
	rag      *RAGService
	defaultK int
	upgrader websocket.Upgrader
}

func NewWebSocketService(rag *RAGService, defaultK int) *WebSocketService {
	return &WebSocketService{
		rag:      rag,
		defaultK: defaultK,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleAsk(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	var req types.AskRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(types.StreamEvent{Type: types.TypeStreamError, Content: "invalid request"})
		return
	}
	if req.Question == "" {
		conn.WriteJSON(types.StreamEvent{Type: types.TypeStreamError, Content: "question is required"})
		return
	}
	if req.K == 0 {
		req.K = s.defaultK
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Watch for the client closing the connection so the generation call
	// gets cancelled promptly.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("WebSocket read error: %v", err)
				}
				return
			}
		}
	}()

	events := make(chan types.StreamEvent)
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.rag.StreamAnswer(ctx, req.Question, req.K, req.DocumentIDs, events)
	}()

	// Ping so the read deadline keeps advancing during long generations; a
	// client that stops ponging trips the deadline and cancels the stream.
	pingTicker := time.NewTicker(wsPingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				cancel()
				<-errChan
				return
			}
		case event := <-events:
			if err := conn.WriteJSON(event); err != nil {
				cancel()
				<-errChan
				return
			}
		case err := <-errChan:
			if err == nil {
				conn.WriteJSON(types.StreamEvent{Type: types.TypeStreamDone})
				return
			}
			if types.KindOf(err) == types.ErrKindCancelled {
				// Caller went away; nobody is listening for a terminal event.
				return
			}
			conn.WriteJSON(types.StreamEvent{Type: types.TypeStreamError, Content: err.Error()})
			return
		}
	}
}
