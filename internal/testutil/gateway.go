package testutil

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/cubie-app/chat/internal/cache"
	"github.com/cubie-app/chat/internal/handlers"
	"github.com/cubie-app/chat/internal/handlers/ws"
	"github.com/cubie-app/chat/internal/middleware"
	"github.com/cubie-app/chat/internal/models"
	"github.com/cubie-app/chat/internal/service"
)

const testJWTSecret = "test-secret-do-not-use"

// Gateway is an in-process chat gateway backed by the in-memory repositories.
// It listens on a random loopback port.
type Gateway struct {
	Users    *InMemoryUserRepository
	Groups   *InMemoryGroupRepository
	Messages *InMemoryMessageRepository

	GroupService   *service.GroupService
	MessageService *service.MessageService
	Hub            *ws.Hub

	BaseURL string

	app *fiber.App
}

// StartGateway boots a gateway wired exactly like cmd/server, minus the
// database, redis and rate limiting. It is shut down when the test ends.
func StartGateway(t *testing.T) *Gateway {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)

	userRepo := NewInMemoryUserRepository()
	groupRepo := NewInMemoryGroupRepository(userRepo)
	messageRepo := NewInMemoryMessageRepository(userRepo)

	groupService := service.NewGroupService(groupRepo, messageRepo, userRepo, cache.NewGroupCache(nil))
	messageService := service.NewMessageService(messageRepo, groupRepo)

	wsHandler := handlers.NewWebSocketHandler(messageService, groupService)
	notificationService := service.NewNotificationService(wsHandler.GetHub())
	groupHandler := handlers.NewGroupHandler(groupService, wsHandler.GetHub())
	messageHandler := handlers.NewMessageHandler(messageService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(requestid.New())

	api := app.Group("/api", middleware.AuthRequired())
	api.Get("/groups", groupHandler.GetMyGroups)
	api.Post("/groups", groupHandler.CreateGroup)
	api.Post("/groups/:id/members", groupHandler.AddMembers)
	api.Delete("/groups/:id/members/:memberId", groupHandler.RemoveMember)
	api.Get("/messages/group/:id", messageHandler.GetGroupMessages)
	api.Post("/notifications/announce", notificationHandler.Announce)

	app.Use("/ws", middleware.AuthRequired(), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
	})

	return &Gateway{
		Users:          userRepo,
		Groups:         groupRepo,
		Messages:       messageRepo,
		GroupService:   groupService,
		MessageService: messageService,
		Hub:            wsHandler.GetHub(),
		BaseURL:        fmt.Sprintf("http://%s", ln.Addr().String()),
		app:            app,
	}
}

// SignToken mints a token the gateway accepts for the given user.
func (g *Gateway) SignToken(t *testing.T, user *models.User) string {
	t.Helper()
	claims := middleware.Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}
