package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goatnetwork/goat-staking/internal/admin"
	"github.com/goatnetwork/goat-staking/internal/config"
	"github.com/goatnetwork/goat-staking/internal/db"
	"github.com/goatnetwork/goat-staking/internal/orchestrator"
	"github.com/goatnetwork/goat-staking/internal/state"
	"github.com/goatnetwork/goat-staking/internal/types"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// HistoryReader lists recorded operations, newest first.
type HistoryReader interface {
	Recent(limit int, account string) ([]db.OperationRecord, error)
}

// HTTPServer is the dashboard view: JSON reads of the cached state and
// derived metrics, and the mutating actions of one session.
type HTTPServer struct {
	state   *state.State
	orch    *orchestrator.Orchestrator
	admin   *admin.Controller
	history HistoryReader
	session *orchestrator.Session

	port      string
	jwtSecret []byte
	decimals  int32
	now       func() time.Time
	logger    *log.Entry
}

func NewHTTPServer(st *state.State, orch *orchestrator.Orchestrator, adm *admin.Controller, history HistoryReader, session *orchestrator.Session) *HTTPServer {
	return &HTTPServer{
		state:     st,
		orch:      orch,
		admin:     adm,
		history:   history,
		session:   session,
		port:      config.AppConfig.HTTPPort,
		jwtSecret: []byte(config.AppConfig.HTTPJwtSecret),
		decimals:  config.AppConfig.TokenDecimals,
		now:       time.Now,
		logger:    log.WithFields(log.Fields{"module": "http"}),
	}
}

func (hs *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	v1.GET("/pool", hs.handlePool)
	v1.GET("/account", hs.handleAccount)
	v1.GET("/operation", hs.handleOperation)
	v1.GET("/operations", hs.handleOperations)

	mutate := v1.Group("", hs.authMiddleware())
	mutate.PUT("/session", hs.handleSession)
	mutate.POST("/max", hs.handleMax)
	mutate.POST("/approve", hs.handleAction(types.KindApprove))
	mutate.POST("/stake", hs.handleAction(types.KindStake))
	mutate.POST("/withdraw", hs.handleAction(types.KindWithdraw))
	mutate.POST("/claim", hs.handleAction(types.KindClaim))
	mutate.POST("/exit", hs.handleAction(types.KindExit))
	mutate.POST("/admin/duration", hs.handleAction(types.KindSetDuration))
	mutate.POST("/admin/fund", hs.handleAction(types.KindFundEpoch))

	return r
}

// Start serves until ctx is done.
func (hs *HTTPServer) Start(ctx context.Context) {
	srv := &http.Server{
		Addr:    ":" + hs.port,
		Handler: hs.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			hs.logger.Errorf("HTTP server shutdown: %v", err)
		}
	}()

	hs.logger.Infof("HTTP server is running on port %s", hs.port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start HTTP server: %v", err)
	}
	hs.logger.Info("HTTP server stopped")
}

// authMiddleware requires an HS256 bearer token when HTTP_JWT_SECRET is set.
func (hs *HTTPServer) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(hs.jwtSecret) == 0 {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKey
			}
			return hs.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			hs.logger.Debugf("Rejected bearer token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid bearer token"})
			return
		}
		c.Next()
	}
}
