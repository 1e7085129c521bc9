package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"chatgate/db"
	"chatgate/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorBody struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
}

type historyQuery struct {
	Limit  *int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int  `form:"offset" binding:"min=0"`
}

type historyResponse struct {
	Messages []models.Message `json:"messages"`
}

type createUserRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
}

type createChatRequest struct {
	ParticipantIDs []models.UserID `json:"participant_ids" binding:"required"`
}

type addParticipantRequest struct {
	UserID models.UserID `json:"user_id" binding:"required"`
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/healthz", s.handleHealth)
	r.GET("/ws/:user_id", s.handleWebSocket)

	api := r.Group("/api")
	api.GET("/history/:chat_id", s.handleHistory)
	api.POST("/users", s.handleCreateUser)
	api.GET("/users/:user_id", s.handleGetUser)
	api.PUT("/users/:user_id", s.handleUpdateUser)
	api.GET("/users/:user_id/chats", s.handleUserChats)
	api.POST("/chats", s.handleCreateChat)
	api.GET("/chats/:chat_id", s.handleGetChat)
	api.POST("/chats/:chat_id/participants", s.handleAddParticipant)
	api.DELETE("/chats/:chat_id/participants/:user_id", s.handleRemoveParticipant)
	return r
}

func (s *Server) accessLog() gin.HandlerFunc {
	log := s.log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("Request served",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorBody{Detail: detail, StatusCode: status})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return id, true
}

// storageFailed maps storage errors that are not request errors.
func (s *Server) storageFailed(c *gin.Context, op string, err error) {
	s.log.Error("Storage request failed", zap.String("op", op), zap.Error(err))
	abort(c, http.StatusServiceUnavailable, "Storage unavailable")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": s.registry.Len()})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		s.log.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}

	if err := s.Serve(models.UserID(id), NewWSConn(ws, s.transportOptions())); err != nil && !errors.Is(err, ErrServerClosed) {
		s.log.Debug("Session ended with error", zap.Int64("user_id", id), zap.Error(err))
	}
}

func (s *Server) handleHistory(c *gin.Context) {
	id, ok := pathID(c, "chat_id")
	if !ok {
		return
	}
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	limit := s.config.HistoryDefaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}

	ctx := c.Request.Context()
	chatID := models.ChatID(id)
	if _, err := s.store.GetChatWithParticipants(ctx, chatID); err != nil {
		if errors.Is(err, db.ErrNoRows) {
			abort(c, http.StatusNotFound, "Chat not found")
			return
		}
		s.storageFailed(c, "history", err)
		return
	}

	messages, err := s.store.GetChatMessages(ctx, chatID, limit, q.Offset)
	if err != nil {
		s.storageFailed(c, "history", err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	c.JSON(http.StatusOK, historyResponse{Messages: messages})
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), req.Username)
	switch {
	case errors.Is(err, db.ErrInvalidUsername):
		abort(c, http.StatusUnprocessableEntity, "Username must not be blank")
	case errors.Is(err, db.ErrUsernameTaken):
		abort(c, http.StatusConflict, "Username already taken")
	case err != nil:
		s.storageFailed(c, "create user", err)
	default:
		c.JSON(http.StatusCreated, user)
	}
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	user, err := s.store.GetUser(c.Request.Context(), models.UserID(id))
	switch {
	case errors.Is(err, db.ErrUserNotFound):
		abort(c, http.StatusNotFound, "User not found")
	case err != nil:
		s.storageFailed(c, "get user", err)
	default:
		c.JSON(http.StatusOK, user)
	}
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := c.Request.Context()
	err := s.store.UpdateUsername(ctx, models.UserID(id), req.Username)
	switch {
	case errors.Is(err, db.ErrUserNotFound):
		abort(c, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, db.ErrInvalidUsername):
		abort(c, http.StatusUnprocessableEntity, "Username must not be blank")
		return
	case errors.Is(err, db.ErrUsernameTaken):
		abort(c, http.StatusConflict, "Username already taken")
		return
	case err != nil:
		s.storageFailed(c, "update user", err)
		return
	}

	user, err := s.store.GetUser(ctx, models.UserID(id))
	if err != nil {
		s.storageFailed(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleUserChats(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	chatIDs, err := s.store.GetUserChatIDs(ctx, models.UserID(id))
	switch {
	case errors.Is(err, db.ErrUserNotFound):
		abort(c, http.StatusNotFound, "User not found")
		return
	case err != nil:
		s.storageFailed(c, "user chats", err)
		return
	}

	chats := make([]*models.Chat, 0, len(chatIDs))
	for _, chatID := range chatIDs {
		chat, err := s.store.GetChatWithParticipants(ctx, chatID)
		if err != nil {
			s.storageFailed(c, "user chats", err)
			return
		}
		chats = append(chats, chat)
	}
	c.JSON(http.StatusOK, chats)
}

func (s *Server) handleCreateChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	chat, err := s.store.CreateChat(c.Request.Context(), req.ParticipantIDs)
	switch {
	case errors.Is(err, db.ErrInvalidParticipants):
		abort(c, http.StatusBadRequest, "Chat must have exactly two participants")
		return
	case errors.Is(err, db.ErrUserNotFound):
		abort(c, http.StatusNotFound, "User not found")
		return
	case err != nil:
		s.storageFailed(c, "create chat", err)
		return
	}

	for _, userID := range chat.ParticipantIDs() {
		s.registry.Subscribe(userID, chat.ID)
	}
	c.JSON(http.StatusCreated, chat)
}

func (s *Server) handleGetChat(c *gin.Context) {
	id, ok := pathID(c, "chat_id")
	if !ok {
		return
	}

	chat, err := s.store.GetChatWithParticipants(c.Request.Context(), models.ChatID(id))
	switch {
	case errors.Is(err, db.ErrNoRows):
		abort(c, http.StatusNotFound, "Chat not found")
	case err != nil:
		s.storageFailed(c, "get chat", err)
	default:
		c.JSON(http.StatusOK, chat)
	}
}

func (s *Server) handleAddParticipant(c *gin.Context) {
	id, ok := pathID(c, "chat_id")
	if !ok {
		return
	}
	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	chatID := models.ChatID(id)
	err := s.store.AddParticipant(c.Request.Context(), chatID, req.UserID)
	switch {
	case errors.Is(err, db.ErrNoRows):
		abort(c, http.StatusNotFound, "Chat not found")
	case errors.Is(err, db.ErrUserNotFound):
		abort(c, http.StatusNotFound, "User not found")
	case errors.Is(err, db.ErrInvalidParticipants):
		abort(c, http.StatusConflict, "Chat already has two participants")
	case err != nil:
		s.storageFailed(c, "add participant", err)
	default:
		s.registry.Subscribe(req.UserID, chatID)
		c.Status(http.StatusNoContent)
	}
}

// handleRemoveParticipant only changes storage. A connected user keeps
// receiving broadcasts for the chat until reconnect, but can no longer send
// to it.
func (s *Server) handleRemoveParticipant(c *gin.Context) {
	chatID, ok := pathID(c, "chat_id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	err := s.store.RemoveParticipant(c.Request.Context(), models.ChatID(chatID), models.UserID(userID))
	switch {
	case errors.Is(err, db.ErrNoRows):
		abort(c, http.StatusNotFound, "Participant not found")
	case err != nil:
		s.storageFailed(c, "remove participant", err)
	default:
		c.Status(http.StatusNoContent)
	}
}
