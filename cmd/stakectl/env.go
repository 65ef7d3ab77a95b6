package main

import (
	"github.com/goatnetwork/goat-staking/internal/admin"
	"github.com/goatnetwork/goat-staking/internal/config"
	"github.com/goatnetwork/goat-staking/internal/layer2"
	"github.com/goatnetwork/goat-staking/internal/orchestrator"
	"github.com/goatnetwork/goat-staking/internal/state"
)

// Env is everything one command needs, built once per invocation.
type Env struct {
	State    *state.State
	Orch     *orchestrator.Orchestrator
	Admin    *admin.Controller
	Session  *orchestrator.Session
	Decimals int32
	Close    func()
}

func newEnvFromConfig() (*Env, error) {
	config.InitConfig()

	client, err := layer2.NewClientFromConfig()
	if err != nil {
		return nil, err
	}
	account := client.Account()
	st := state.InitializeState(client, account)
	adm := admin.NewController(config.AppConfig.OwnerAddress)
	return &Env{
		State:    st,
		Orch:     orchestrator.NewOrchestrator(client, st, adm, st.EventBus, config.AppConfig.TokenDecimals),
		Admin:    adm,
		Session:  orchestrator.NewSession(account),
		Decimals: config.AppConfig.TokenDecimals,
		Close:    client.Close,
	}, nil
}
