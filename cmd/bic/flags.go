// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	networkFlag = cli.StringFlag{
		Name:  "network",
		Value: "dev",
		Usage: "the network to use (main|test|dev) or the path to a genesis yaml file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	dbFlag = cli.StringFlag{
		Name:  "db",
		Value: "leveldb",
		Usage: "database engine (leveldb|sqlite)",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 64,
		Usage: "megabytes of ram allocated to the account read cache",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogFlag = cli.BoolFlag{
		Name:  "json-log",
		Usage: "output logs in JSON format",
	}

	keyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "hex encoded private key of the sender, prompted if absent",
	}
	typeFlag = cli.StringFlag{
		Name:  "type",
		Value: "transfer",
		Usage: "transaction type (coinbase|transfer|delegate|vote|unvote|blessme|blessboss)",
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "recipient address",
	}
	valueFlag = cli.Uint64Flag{
		Name:  "value",
		Usage: "amount to move",
	}
	feeFlag = cli.Int64Flag{
		Name:  "fee",
		Value: -1,
		Usage: "transaction fee, defaults to the network's min fee",
	}
	nonceFlag = cli.Int64Flag{
		Name:  "nonce",
		Value: -1,
		Usage: "sender nonce, defaults to the one in the ledger",
	}
	dataFlag = cli.StringFlag{
		Name:  "data",
		Usage: "hex encoded payload",
	}
	applyFlag = cli.BoolFlag{
		Name:  "apply",
		Usage: "apply the transaction to the local ledger",
	}
	coinFlag = cli.StringFlag{
		Name:  "coin",
		Value: "BICI",
		Usage: "secondary ledger to list (BICI|BICIP)",
	}
)
