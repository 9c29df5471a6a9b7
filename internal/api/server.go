// Package api exposes the monitor state over REST and websocket.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/temoto/pimon/internal/sensor"
	"github.com/temoto/pimon/internal/state"
	"github.com/temoto/pimon/log2"
)

const welcome = "pimon server is running"

type Server struct { //nolint:maligned
	g        *state.Global
	log      *log2.Log
	engine   *gin.Engine
	srv      *http.Server
	upgrader websocket.Upgrader

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool
}

func NewServer(ctx context.Context) *Server {
	g := state.GetGlobal(ctx)
	self := &Server{
		g:   g,
		log: g.Log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}

	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery())
	e.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders:    []string{"Content-Type"},
	}))
	e.GET("/", self.handleRoot)
	e.GET("/status", self.handleStatus)
	e.GET("/sensor", self.handleSensor)
	e.GET("/display", self.handleDisplay)
	e.POST("/led", self.handleLed)
	e.GET("/ws", self.handleWebsocket)
	self.engine = e
	return self
}

// Handler exposes the route tree for httptest.
func (self *Server) Handler() http.Handler { return self.engine }

// Run blocks on ListenAndServe. A bind failure (port taken) comes back
// as the error, caller decides it is fatal.
func (self *Server) Run(listen string) error {
	self.srv = &http.Server{
		Addr:    listen,
		Handler: self.engine,
	}
	self.log.Infof("http listen=%s", listen)
	err := self.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return errors.Annotatef(err, "http listen=%s", listen)
}

func (self *Server) Stop(timeout time.Duration) {
	if self.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := self.srv.Shutdown(ctx); err != nil {
		self.log.Errorf("http shutdown err=%v", err)
	}
}

func (self *Server) handleRoot(c *gin.Context) {
	c.String(http.StatusOK, welcome)
}

func (self *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, self.g.Store.Snapshot())
}

func (self *Server) handleSensor(c *gin.Context) {
	r := self.g.Store.Reading()
	if r == nil {
		c.JSON(http.StatusOK, gin.H{"error": "no sensor data available"})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (self *Server) handleDisplay(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"display_content": self.g.Store.Content(),
		"mode":            self.g.Display.Mode(),
	})
}

type ledRequest struct {
	State *bool `json:"state"`
}

func (self *Server) handleLed(c *gin.Context) {
	var req ledRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.State == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid request body, expected {\"state\": bool}",
		})
		return
	}

	// explicit write cancels the startup blink task
	self.g.StopBlink()

	on := *req.State
	if err := self.g.Led.Set(on); err != nil {
		self.g.Error(errors.Annotatef(err, "led set=%t", on))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "led hardware failure",
		})
		return
	}
	self.g.Store.SetLed(on)
	c.JSON(http.StatusOK, gin.H{
		"led_state": on,
		"success":   true,
	})
}

func (self *Server) handleWebsocket(c *gin.Context) {
	conn, err := self.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		self.log.Errorf("ws upgrade err=%v", err)
		return
	}
	defer conn.Close()

	self.clientsMu.Lock()
	self.clients[conn] = true
	n := len(self.clients)
	self.clientsMu.Unlock()
	self.log.Debugf("ws client connected total=%d", n)

	defer func() {
		self.clientsMu.Lock()
		delete(self.clients, conn)
		self.clientsMu.Unlock()
	}()

	// inbound messages are ignored, read loop only detects disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (self *Server) clientCount() int {
	self.clientsMu.Lock()
	defer self.clientsMu.Unlock()
	return len(self.clients)
}

// Broadcast pushes one reading to every websocket client. Wired as a
// monitor tick observer.
func (self *Server) Broadcast(r sensor.Reading) {
	self.clientsMu.Lock()
	defer self.clientsMu.Unlock()
	for conn := range self.clients {
		if err := conn.WriteJSON(r); err != nil {
			self.log.Debugf("ws write err=%v", err)
			conn.Close()
			delete(self.clients, conn)
		}
	}
}
