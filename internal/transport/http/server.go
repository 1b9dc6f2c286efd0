package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/launchstack/chatroom-server/internal/auth"
	"github.com/launchstack/chatroom-server/internal/config"
	"github.com/launchstack/chatroom-server/internal/core"
	"github.com/launchstack/chatroom-server/internal/service/rooms"
)

// NewServer builds the HTTP server hosting the REST API and the websocket
// endpoint.
func NewServer(hub *core.Hub, authService *auth.Service, verifier auth.Verifier, roomService *rooms.Service, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(hub, authService, verifier, roomService, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter wires the REST routes into a gin engine and mounts the websocket
// endpoint beside it on a plain mux. The upgrade hijacks the underlying
// connection, which gin's response writer does not support.
func NewRouter(hub *core.Hub, authService *auth.Service, verifier auth.Verifier, roomService *rooms.Service, cfg config.Config, logger *zerolog.Logger) stdhttp.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	apiHandlers := NewAPIHandlers(authService, logger)
	router.POST("/api/register", apiHandlers.Register)
	router.POST("/api/login", apiHandlers.Login)

	roomHandlers := NewRoomHandlers(roomService, logger)
	roomRoutes := router.Group("/api/rooms", AuthMiddleware(verifier, logger))
	roomRoutes.POST("", roomHandlers.CreateRoom)
	roomRoutes.GET("", roomHandlers.ListRooms)
	roomRoutes.DELETE("/:id", roomHandlers.DeleteRoom)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, verifier, cfg.VerifyTimeout, logger))
	mux.Handle("/", router)

	return mux
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
