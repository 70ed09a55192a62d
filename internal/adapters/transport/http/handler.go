package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/service"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/validate"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is satisfied by every account store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc   service.Service
	store Pinger
	log   *zap.Logger
}

func NewHandler(svc service.Service, store Pinger, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, store: store, log: log}
}

func (h *Handler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorDTO{Error: "Bad Input"})
		return
	}

	account, err := h.svc.Register(c.Request.Context(), validate.RegisterInput{
		Username:        body.Username,
		Email:           body.Email,
		Password:        body.Password,
		ConfirmPassword: body.ConfirmPassword,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromAccount(account))
}

func (h *Handler) Login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorDTO{Error: "Bad Input"})
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), validate.LoginInput{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSession(sess))
}

func (h *Handler) ListUsers(c *gin.Context) {
	accounts, err := h.svc.ListOthers(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAccounts(accounts))
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("store health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "time": time.Now().Unix()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	if uie, ok := customErrors.AsUserInput(err); ok {
		c.JSON(http.StatusBadRequest, dto.ErrorDTO{Error: uie.Message, Errors: uie.Errors})
		return
	}
	if customErrors.IsUnauthenticated(err) {
		c.JSON(http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthenticated"})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.ErrorDTO{Error: "internal server error"})
}
