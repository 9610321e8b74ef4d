package config

import "time"

// Defaults applied before the config file and environment are read.
const (
	DefaultRPCAlgorithm = "fastest"
	DefaultOnDuplicate  = "replace"
	DefaultWalletFile   = "wallet.dat"
	DefaultBenchTPS     = 10
	DefaultBenchWorkers = 4
)

// Timeout constants used across cmd.
const (
	RPCRequestTimeout = 15 * time.Second // single JSON-RPC round trip
	RPCSelectTimeout  = 10 * time.Second // endpoint probing before a command runs
	PollInterval      = time.Second      // height polling between blocks
	BenchDuration     = 10 * time.Second // default load-generation window
)
