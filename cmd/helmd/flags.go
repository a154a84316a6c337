package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML config file; flags override file values",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8668",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Usage: "comma separated list of domains to accept cross origin requests from",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	epochPeriodFlag = cli.Uint64Flag{
		Name:  "epoch-period",
		Value: 1209600, // two weeks
		Usage: "epoch length in seconds",
	}
	startTimeFlag = cli.Uint64Flag{
		Name:  "start-time",
		Usage: "unix timestamp the first epoch starts at (default: now)",
	}
	minCampaignDurationFlag = cli.Uint64Flag{
		Name:  "min-campaign-duration",
		Value: 345600, // four days
		Usage: "minimum campaign duration in seconds",
	}
	networkFeeFlag = cli.Uint64Flag{
		Name:  "default-network-fee",
		Value: 25,
		Usage: "network fee in bps until the first campaign resolves",
	}
	rewardFlag = cli.Uint64Flag{
		Name:  "default-reward",
		Value: 3000,
		Usage: "reward share in bps until the first brr campaign resolves",
	}
	rebateFlag = cli.Uint64Flag{
		Name:  "default-rebate",
		Value: 2000,
		Usage: "rebate share in bps until the first brr campaign resolves",
	}
	operatorFlag = cli.StringFlag{
		Name:  "operator",
		Usage: "address allowed to create and cancel campaigns",
	}
	totalSupplyFlag = cli.StringFlag{
		Name:  "total-supply",
		Value: "1000000000000000000000000",
		Usage: "governance token total supply snapshotted into campaigns",
	}
)
