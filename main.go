package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/alert"
	"github.com/sisu-network/sentinel/chains"
	"github.com/sisu-network/sentinel/chains/cardano"
	"github.com/sisu-network/sentinel/chains/eth"
	"github.com/sisu-network/sentinel/chains/solana"
	"github.com/sisu-network/sentinel/chains/utxo"
	"github.com/sisu-network/sentinel/client"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/core"
	"github.com/sisu-network/sentinel/database"
	"github.com/sisu-network/sentinel/network"
	"github.com/sisu-network/sentinel/server"
	"github.com/sisu-network/sentinel/types"
	"github.com/sisu-network/sentinel/verifier"
)

func buildChain(cfg config.Chain, httpClient network.Http) (*chains.Chain, error) {
	switch types.Family(cfg.Family) {
	case types.FamilyEvm:
		ethClient := eth.NewEthClients(cfg.Chain, cfg.Rpcs)
		chain := &chains.Chain{Client: eth.NewChain(cfg, ethClient)}
		if len(cfg.Gateways) > 0 {
			syncer, err := eth.NewSyncer(cfg, ethClient)
			if err != nil {
				return nil, err
			}
			chain.Syncer = syncer
		}
		return chain, nil

	case types.FamilySolana:
		solanaClient := solana.NewSolanaClient(cfg.Chain, cfg.Rpcs)
		chain := &chains.Chain{Client: solana.NewChain(cfg, solanaClient)}
		if len(cfg.Gateways) > 0 {
			syncer, err := solana.NewSyncer(cfg, solanaClient)
			if err != nil {
				return nil, err
			}
			chain.Syncer = syncer
		}
		return chain, nil

	case types.FamilyUtxo:
		utxoChain, err := utxo.NewChain(cfg)
		if err != nil {
			return nil, err
		}
		chain := &chains.Chain{Client: utxoChain}
		if cfg.Explorer.Kind != "" {
			if chain.Explorer, err = utxo.NewExplorer(cfg.Chain, cfg.Explorer, httpClient); err != nil {
				return nil, err
			}
		}
		return chain, nil

	case types.FamilyCardano:
		chain := &chains.Chain{Client: cardano.NewChain(cfg)}
		if cfg.Explorer.Kind == config.ExplorerBlockfrost {
			chain.Explorer = cardano.NewExplorer(cfg.Explorer, cardano.NewBlockfrostProvider(cfg.Explorer))
		}
		return chain, nil
	}

	return nil, fmt.Errorf("unknown family %s of chain %s", cfg.Family, cfg.Chain)
}

func buildNotifier(cfg *config.Sentinel, httpClient network.Http) (alert.Notifier, func()) {
	notifiers := []alert.Notifier{alert.NewWebhook(cfg.WebhookUrl, cfg.Network, httpClient)}
	flush := func() {}

	if cfg.SentryDsn != "" {
		s, err := alert.NewSentry(cfg.SentryDsn, cfg.Network)
		if err != nil {
			log.Error("Cannot init sentry, err = ", err)
		} else {
			notifiers = append(notifiers, s)
			flush = func() { s.Flush(2 * time.Second) }
		}
	}

	return alert.NewMulti(notifiers...), flush
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Verbose("No .env file loaded: ", err)
	}

	path := os.Getenv("SENTINEL_CONFIG")
	if path == "" {
		path = "sentinel.toml"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.WriteConfigFile(path, config.Default()); err != nil {
			panic(err)
		}
		log.Info("Wrote a default config to ", path, ", add the chains and restart")
		return
	}

	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	db := database.NewDb(cfg)
	if err := db.Init(); err != nil {
		panic(err)
	}
	defer db.Close()

	httpClient := network.NewHttp()
	registry := chains.NewRegistry()
	for _, chainCfg := range cfg.Chains {
		chain, err := buildChain(chainCfg, httpClient)
		if err != nil {
			panic(err)
		}
		registry.Add(chain)
		log.Infof("Added chain %s (%s)", chain.Name(), chainCfg.Family)
	}

	signer := client.NewLightnodeClient(cfg.LightnodeUrl)
	notifier, flush := buildNotifier(cfg, httpClient)
	defer flush()

	submitter := core.NewSubmitter(cfg, registry, db, signer, notifier)
	engine := verifier.NewEngine(cfg, registry, db, signer)
	verification := core.NewVerification(registry, db, engine, notifier, cfg.SigningExplorerLink)

	processor := core.NewProcessor(cfg, registry, db, notifier, submitter, verification)
	if err := processor.Init(); err != nil {
		panic(err)
	}
	if err := processor.Start(); err != nil {
		panic(err)
	}

	api := server.NewApi(db, processor, 3*cfg.TickInterval.Duration+cfg.SyncTimeout.Duration)
	srv, err := server.NewServer(api, cfg.ServerPort)
	if err != nil {
		panic(err)
	}
	go srv.Run()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	log.Info("Shutting down")
	processor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Cannot stop server, err = ", err)
	}
}
