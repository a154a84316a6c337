package main

import (
	"context"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/helmdao/helm/api"
	"github.com/helmdao/helm/dao"
	"github.com/helmdao/helm/gov"
	"github.com/helmdao/helm/staking"
	"github.com/helmdao/helm/state"
)

var (
	version   string
	gitCommit string

	engineAddr  = common.BytesToAddress([]byte("helm.dao"))
	stakingAddr = common.BytesToAddress([]byte("helm.staking"))

	logger = log.New("pkg", "helmd")
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return fmt.Sprintf("%s-%.8s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "helmd",
		Usage:   "epoch-scoped governance engine",
		Flags: []cli.Flag{
			configFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			epochPeriodFlag,
			startTimeFlag,
			minCampaignDurationFlag,
			networkFeeFlag,
			rewardFlag,
			rebateFlag,
			operatorFlag,
			totalSupplyFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger(ctx *cli.Context) {
	level := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	useColor := isatty.IsTerminal(os.Stderr.Fd())
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, level, useColor)
	log.SetDefault(log.NewLogger(handler))
}

func now() uint64 {
	return uint64(time.Now().Unix())
}

func run(ctx *cli.Context) error {
	initLogger(ctx)
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.StartTime == 0 {
		cfg.StartTime = now()
	}
	supply, err := cfg.totalSupply()
	if err != nil {
		return err
	}

	schedule, err := gov.NewSchedule(cfg.EpochPeriod, cfg.StartTime, now())
	if err != nil {
		return err
	}

	st := state.New()
	ledger := staking.New(stakingAddr, st, schedule, now,
		staking.WithEventSink(logStakingEvent))
	engine, err := dao.New(
		engineAddr,
		st,
		ledger,
		func() (*big.Int, error) { return new(big.Int).Set(supply), nil },
		now,
		dao.Config{
			EpochPeriod:          cfg.EpochPeriod,
			StartTime:            cfg.StartTime,
			MinCampaignDuration:  cfg.MinCampaignDuration,
			DefaultNetworkFeeBps: cfg.NetworkFeeBps,
			DefaultRewardBps:     cfg.RewardBps,
			DefaultRebateBps:     cfg.RebateBps,
			Operator:             cfg.operatorAddress(),
			StakingAddress:       stakingAddr,
		},
		dao.WithEventSink(func(ev dao.Event) {
			api.EventSink(ev)
			logger.Debug("engine event", "event", fmt.Sprintf("%T", ev))
		}),
	)
	if err != nil {
		return err
	}
	ledger.SetGovernance(engine)

	return serveAPI(engine, cfg)
}

func serveAPI(engine *dao.DAO, cfg *Config) error {
	listener, err := net.Listen("tcp", cfg.APIAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: api.New(engine, now, cfg.corsOrigins())}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("api served", "addr", listener.Addr(), "version", fullVersion())
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func logStakingEvent(ev staking.Event) {
	logger.Debug("staking event", "event", fmt.Sprintf("%T", ev))
}
