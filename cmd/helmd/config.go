package main

import (
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"
)

// Config is the resolved daemon configuration: the YAML file first,
// then flags on top.
type Config struct {
	APIAddr             string `yaml:"apiAddr"`
	APICors             string `yaml:"apiCors"`
	EpochPeriod         uint64 `yaml:"epochPeriod"`
	StartTime           uint64 `yaml:"startTime"`
	MinCampaignDuration uint64 `yaml:"minCampaignDuration"`
	NetworkFeeBps       uint64 `yaml:"networkFeeBps"`
	RewardBps           uint64 `yaml:"rewardBps"`
	RebateBps           uint64 `yaml:"rebateBps"`
	Operator            string `yaml:"operator"`
	TotalSupply         string `yaml:"totalSupply"`
}

func loadConfig(ctx *cli.Context) (*Config, error) {
	cfg := &Config{}
	if path := ctx.String(configFlag.Name); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WithMessage(err, "read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WithMessage(err, "parse config file")
		}
	}

	override := func(set bool, apply func()) {
		if set {
			apply()
		}
	}
	override(ctx.IsSet(apiAddrFlag.Name) || cfg.APIAddr == "", func() { cfg.APIAddr = ctx.String(apiAddrFlag.Name) })
	override(ctx.IsSet(apiCorsFlag.Name), func() { cfg.APICors = ctx.String(apiCorsFlag.Name) })
	override(ctx.IsSet(epochPeriodFlag.Name) || cfg.EpochPeriod == 0, func() { cfg.EpochPeriod = ctx.Uint64(epochPeriodFlag.Name) })
	override(ctx.IsSet(startTimeFlag.Name), func() { cfg.StartTime = ctx.Uint64(startTimeFlag.Name) })
	override(ctx.IsSet(minCampaignDurationFlag.Name) || cfg.MinCampaignDuration == 0, func() { cfg.MinCampaignDuration = ctx.Uint64(minCampaignDurationFlag.Name) })
	override(ctx.IsSet(networkFeeFlag.Name) || cfg.NetworkFeeBps == 0, func() { cfg.NetworkFeeBps = ctx.Uint64(networkFeeFlag.Name) })
	override(ctx.IsSet(rewardFlag.Name) || cfg.RewardBps == 0, func() { cfg.RewardBps = ctx.Uint64(rewardFlag.Name) })
	override(ctx.IsSet(rebateFlag.Name) || cfg.RebateBps == 0, func() { cfg.RebateBps = ctx.Uint64(rebateFlag.Name) })
	override(ctx.IsSet(operatorFlag.Name), func() { cfg.Operator = ctx.String(operatorFlag.Name) })
	override(ctx.IsSet(totalSupplyFlag.Name) || cfg.TotalSupply == "", func() { cfg.TotalSupply = ctx.String(totalSupplyFlag.Name) })

	if !common.IsHexAddress(cfg.Operator) {
		return nil, errors.New("operator: missing or malformed address")
	}
	return cfg, nil
}

func (c *Config) operatorAddress() common.Address {
	return common.HexToAddress(c.Operator)
}

func (c *Config) totalSupply() (*big.Int, error) {
	supply, ok := new(big.Int).SetString(c.TotalSupply, 10)
	if !ok || supply.Sign() < 0 {
		return nil, errors.New("totalSupply: malformed decimal")
	}
	return supply, nil
}

func (c *Config) corsOrigins() []string {
	if c.APICors == "" {
		return []string{}
	}
	parts := strings.Split(c.APICors, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
