package service

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"lecturelab_backend/pkg/logger"
	"lecturelab_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 16

	resultsChannel   = "lesson_results_channel"
	EventAnswerAdded = "ANSWER_SUBMITTED"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// LiveItemStats 推送给看板的单题统计
type LiveItemStats struct {
	LessonID string `json:"lessonId"`
	*ItemStats
}

type LiveClient struct {
	Hub      *ResultsHub
	Conn     *websocket.Conn
	Send     chan []byte
	LessonID string
	Limiter  *rate.Limiter
}

// readPump 看板只接收推送，上行消息仅用于保活，超过限流的直接丢弃
func (c *LiveClient) readPump() {
	defer func() {
		c.Hub.removeClient(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("Live results socket closed unexpectedly", zap.Error(err), zap.String("lesson_id", c.LessonID))
			}
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		if !c.Limiter.Allow() {
			logger.Log.Debug("Live results frame throttled", zap.String("lesson_id", c.LessonID))
		}
	}
}

func (c *LiveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type shard struct {
	lessons map[string]map[*LiveClient]struct{}
	mu      sync.RWMutex
}

// ResultsHub 按课程分组的实时统计推送。
// 配置了 Redis 时经 pub/sub 广播到所有实例，否则仅推送到本实例连接。
type ResultsHub struct {
	shards [shardCount]*shard
	Redis  *redis.Client
	ctx    context.Context
	cancel context.CancelFunc
}

func NewResultsHub(rdb *redis.Client) *ResultsHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &ResultsHub{Redis: rdb, ctx: ctx, cancel: cancel}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{lessons: make(map[string]map[*LiveClient]struct{})}
	}
	return h
}

func (h *ResultsHub) getShard(lessonID string) *shard {
	f := fnv.New32a()
	f.Write([]byte(lessonID))
	return h.shards[f.Sum32()%shardCount]
}

type resultsEnvelope struct {
	LessonID string          `json:"lessonId"`
	Payload  json.RawMessage `json:"payload"`
}

// Run 订阅 Redis 频道并转发到本地连接，未配置 Redis 时立即返回
func (h *ResultsHub) Run() {
	if h.Redis == nil {
		return
	}
	pubsub := h.Redis.Subscribe(h.ctx, resultsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env resultsEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Log.Error("PubSub unmarshal error", zap.Error(err))
				continue
			}
			h.deliverLocal(env.LessonID, env.Payload)
		}
	}
}

// Stop 关闭所有连接
func (h *ResultsHub) Stop() {
	h.cancel()

	closed := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.Lock()
		for lessonID, clients := range s.lessons {
			for c := range clients {
				close(c.Send)
				closed++
			}
			delete(s.lessons, lessonID)
		}
		s.mu.Unlock()
	}

	monitoring.LiveDashboardClients.Set(0)
	logger.Log.Info("ResultsHub stopped", zap.Int("closedConnections", closed))
}

func (h *ResultsHub) PublishItemStats(lessonID string, stats *ItemStats) {
	msgBytes, err := json.Marshal(WSMessage{
		Type: EventAnswerAdded,
		Data: LiveItemStats{LessonID: lessonID, ItemStats: stats},
	})
	if err != nil {
		logger.Log.Error("Failed to encode live results", zap.Error(err))
		return
	}

	if h.Redis == nil {
		h.deliverLocal(lessonID, msgBytes)
		return
	}

	payload, _ := json.Marshal(resultsEnvelope{LessonID: lessonID, Payload: msgBytes})
	if err := h.Redis.Publish(h.ctx, resultsChannel, payload).Err(); err != nil {
		logger.Log.Warn("Redis publish failed, delivering locally", zap.Error(err))
		h.deliverLocal(lessonID, msgBytes)
	}
}

// deliverLocal 发送队列已满的慢连接直接丢弃本条消息
func (h *ResultsHub) deliverLocal(lessonID string, payload []byte) {
	s := h.getShard(lessonID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.lessons[lessonID] {
		select {
		case c.Send <- payload:
		default:
		}
	}
}

func (h *ResultsHub) addClient(c *LiveClient) {
	s := h.getShard(c.LessonID)
	s.mu.Lock()
	clients, ok := s.lessons[c.LessonID]
	if !ok {
		clients = make(map[*LiveClient]struct{})
		s.lessons[c.LessonID] = clients
	}
	clients[c] = struct{}{}
	s.mu.Unlock()
	monitoring.LiveDashboardClients.Inc()
}

func (h *ResultsHub) removeClient(c *LiveClient) {
	s := h.getShard(c.LessonID)
	s.mu.Lock()
	defer s.mu.Unlock()
	clients := s.lessons[c.LessonID]
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(s.lessons, c.LessonID)
	}
	close(c.Send)
	monitoring.LiveDashboardClients.Dec()
}

// ClientCount 本实例上订阅某课程的连接数
func (h *ResultsHub) ClientCount(lessonID string) int {
	s := h.getShard(lessonID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lessons[lessonID])
}

func ServeLive(hub *ResultsHub, w http.ResponseWriter, r *http.Request, lessonID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("WebSocket upgrade failed", zap.Error(err), zap.String("lesson_id", lessonID))
		return
	}
	client := &LiveClient{
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 64),
		LessonID: lessonID,
		Limiter:  rate.NewLimiter(rate.Limit(5), 10),
	}
	hub.addClient(client)

	go client.writePump()
	go client.readPump()
}
