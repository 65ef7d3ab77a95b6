package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/goatnetwork/goat-staking/internal/admin"
	"github.com/goatnetwork/goat-staking/internal/config"
	"github.com/goatnetwork/goat-staking/internal/db"
	"github.com/goatnetwork/goat-staking/internal/http"
	"github.com/goatnetwork/goat-staking/internal/layer2"
	"github.com/goatnetwork/goat-staking/internal/orchestrator"
	"github.com/goatnetwork/goat-staking/internal/state"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	DatabaseManager *db.DatabaseManager
	State           *state.State
	Layer2Client    *layer2.Client
	Admin           *admin.Controller
	Orchestrator    *orchestrator.Orchestrator
	Recorder        *db.Recorder
	HTTPServer      *http.HTTPServer
}

func NewApplication() *Application {
	config.InitConfig()

	dbm := db.NewDatabaseManager(config.AppConfig.DbDir)
	client, err := layer2.NewClientFromConfig()
	if err != nil {
		log.Fatalf("Failed to connect to layer2: %v", err)
	}
	if err := client.CheckPool(context.Background(), config.AppConfig.OwnerAddress); err != nil {
		log.Warnf("Pool check failed: %v", err)
	}
	account := client.Account()
	if account == nil {
		log.Warn("No ACCOUNT_PRIVATE_KEY configured, running read-only")
	}

	state := state.InitializeState(client, account)
	adminController := admin.NewController(config.AppConfig.OwnerAddress)
	orch := orchestrator.NewOrchestrator(client, state, adminController, state.EventBus, config.AppConfig.TokenDecimals)
	recorder := db.NewRecorder(dbm, state.EventBus)
	session := orchestrator.NewSession(account)
	httpServer := http.NewHTTPServer(state, orch, adminController, recorder, session)

	return &Application{
		DatabaseManager: dbm,
		State:           state,
		Layer2Client:    client,
		Admin:           adminController,
		Orchestrator:    orch,
		Recorder:        recorder,
		HTTPServer:      httpServer,
	}
}

func (app *Application) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.State.Start(ctx, config.AppConfig.PollInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Recorder.Start(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Orchestrator.Start(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.HTTPServer.Start(ctx)
	}()

	<-stop
	log.Info("Receiving exit signal...")

	cancel()

	wg.Wait()
	app.Layer2Client.Close()
	app.DatabaseManager.Close()
	log.Info("Server stopped")
}

func main() {
	app := NewApplication()
	app.Run()
}
