// Command blockparser rebuilds the canonical chain from a node's block files
// and exports it to the sink chosen by subcommand.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/network"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type options struct {
	BlocksDir    string          `long:"blocks-dir" env:"BLOCKPARSER_BLOCKS_DIR" description:"node blocks directory holding blkNNNNN.dat files" required:"true" validate:"required"`
	Coin         network.Coin    `long:"coin" env:"BLOCKPARSER_COIN" description:"coin name" default:"btc" validate:"oneof=btc ltc"`
	Network      network.Network `long:"network" env:"BLOCKPARSER_NETWORK" description:"network name" default:"mainnet" validate:"oneof=mainnet testnet regtest signet"`
	Workers      int             `long:"workers" env:"BLOCKPARSER_WORKERS" description:"decode workers, 0 means one per CPU" default:"0" validate:"gte=0"`
	ScanWorkers  int             `long:"scan-workers" env:"BLOCKPARSER_SCAN_WORKERS" description:"block files read at once" default:"2" validate:"gte=1"`
	Margin       uint64          `long:"margin" env:"BLOCKPARSER_MARGIN" description:"blocks a block must be buried under the tip before it is exported" default:"6"`
	TieBreak     string          `long:"tie-break" env:"BLOCKPARSER_TIE_BREAK" description:"tip choice on equal work" default:"first-seen" choice:"first-seen" choice:"lowest-hash"`
	FlushTip     bool            `long:"flush-tip" env:"BLOCKPARSER_FLUSH_TIP" description:"export the unsettled tip blocks when input ends"`
	ReverseFiles bool            `long:"reverse-files" env:"BLOCKPARSER_REVERSE_FILES" description:"scan block files newest first"`
	EndHeight    uint64          `long:"end-height" env:"BLOCKPARSER_END_HEIGHT" description:"stop after exporting this height, 0 means no limit"`

	CheckpointFile      string `long:"checkpoint-file" env:"BLOCKPARSER_CHECKPOINT_FILE" description:"JSON file keeping the last exported block" validate:"excluded_with=CheckpointRedisAddr"`
	CheckpointRedisAddr string `long:"checkpoint-redis-addr" env:"BLOCKPARSER_CHECKPOINT_REDIS_ADDR" description:"redis address keeping the last exported block"`
	CheckpointRedisUser string `long:"checkpoint-redis-user" env:"BLOCKPARSER_CHECKPOINT_REDIS_USER" description:"redis username"`
	CheckpointRedisPass string `long:"checkpoint-redis-password" env:"BLOCKPARSER_CHECKPOINT_REDIS_PASSWORD" description:"redis password"`
	CheckpointRedisDB   int    `long:"checkpoint-redis-db" env:"BLOCKPARSER_CHECKPOINT_REDIS_DB" description:"redis database" default:"0" validate:"gte=0"`

	StartHeight uint64 `long:"start-height" env:"BLOCKPARSER_START_HEIGHT" description:"first height to export, looked up in the node block index; overrides the checkpoint store"`
	IndexDir    string `long:"index-dir" env:"BLOCKPARSER_INDEX_DIR" description:"node block index directory, defaults to <blocks-dir>/index"`

	MetricsAddr string `long:"metrics-addr" env:"BLOCKPARSER_METRICS_ADDR" description:"address for metrics server, empty disables it"`
	LogLevel    string `long:"log-level" env:"BLOCKPARSER_LOG_LEVEL" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error"`
	LogFormat   string `long:"log-format" env:"BLOCKPARSER_LOG_FORMAT" description:"log encoding" default:"console" choice:"console" choice:"json"`
	Progress    bool   `long:"progress" env:"BLOCKPARSER_PROGRESS" description:"show a progress bar over block files"`
}

// app carries what the subcommands share.
type app struct {
	ctx    context.Context
	opts   options
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{ctx: ctx}
	parser := flags.NewParser(&a.opts, flags.Default)
	registerCommands(parser, a)

	_, err := parser.Parse()
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err == nil {
		return
	}

	var ferr *flags.Error
	if errors.As(err, &ferr) {
		if ferr.Type == flags.ErrHelp {
			return
		}
		// go-flags already printed it
		os.Exit(2)
	}
	if a.logger != nil {
		a.logger.Error("blockparser failed", zap.Error(err))
		_ = a.logger.Sync()
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	stop()
	os.Exit(1)
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewDevelopmentConfig()
	if format == "json" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = lvl
	return cfg.Build()
}
