// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/log"
	"github.com/incensechain/bic/processor"
	"github.com/incensechain/bic/state"
	"github.com/incensechain/bic/tx"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "bic"
	app.Usage = "Ledger state tool of the BIC network"
	app.Flags = []cli.Flag{
		networkFlag,
		dataDirFlag,
		dbFlag,
		cacheFlag,
		verbosityFlag,
		jsonLogFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		log.Setup(os.Stderr, ctx.GlobalInt(verbosityFlag.Name), ctx.GlobalBool(jsonLogFlag.Name))
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "set up the ledger of the network",
			Action: initAction,
		},
		{
			Name:      "account",
			Usage:     "show the account of an address",
			ArgsUsage: "<address>",
			Action:    accountAction,
		},
		{
			Name:  "transfer",
			Usage: "build and sign a transaction, and optionally apply it",
			Flags: []cli.Flag{
				keyFlag,
				typeFlag,
				toFlag,
				valueFlag,
				feeFlag,
				nonceFlag,
				dataFlag,
				applyFlag,
			},
			Action: transferAction,
		},
		{
			Name:      "decode",
			Usage:     "decode and verify a hex encoded transaction",
			ArgsUsage: "<hex>",
			Action:    decodeAction,
		},
		{
			Name:   "holders",
			Usage:  "list the holders of a secondary coin",
			Flags:  []cli.Flag{coinFlag},
			Action: holdersAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		os.Exit(1)
	}
}

func initAction(ctx *cli.Context) error {
	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	fmt.Fprintf(ctx.App.Writer, "Network:   %v\n", l.gene.Name())
	fmt.Fprintf(ctx.App.Writer, "Genesis:   %v\n", l.gene.ID())
	fmt.Fprintf(ctx.App.Writer, "Instance:  %v\n", l.dir)
	return nil
}

func accountAction(ctx *cli.Context) error {
	addr, err := bic.ParseAddress(ctx.Args().First())
	if err != nil {
		return errors.Wrap(err, "address")
	}
	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	acc, err := l.state.GetAccount(addr)
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	fmt.Fprintf(w, "Address:       %v\n", acc.Address())
	fmt.Fprintf(w, "Available:     %d %v\n", acc.Available(), tx.CoinIncenseCoin)
	fmt.Fprintf(w, "Locked:        %d %v\n", acc.Locked(), tx.CoinIncenseCoin)
	fmt.Fprintf(w, "Incense:       %d %v\n", acc.IncenseAvailable(), tx.CoinIncense)
	fmt.Fprintf(w, "IncensePiece:  %d %v\n", acc.IncensePieceAvailable(), tx.CoinIncensePiece)
	fmt.Fprintf(w, "Nonce:         %d\n", acc.Nonce())
	return nil
}

func transferAction(ctx *cli.Context) error {
	key, err := parseKey(ctx.String(keyFlag.Name))
	if err != nil {
		return err
	}
	typ, err := tx.ParseType(ctx.String(typeFlag.Name))
	if err != nil {
		return err
	}
	var to bic.Address
	if s := ctx.String(toFlag.Name); s != "" {
		if to, err = bic.ParseAddress(s); err != nil {
			return errors.Wrap(err, "to")
		}
	}
	data, err := parseHex(ctx.String(dataFlag.Name))
	if err != nil {
		return errors.Wrap(err, "data")
	}

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	fee := uint64(ctx.Int64(feeFlag.Name))
	if ctx.Int64(feeFlag.Name) < 0 {
		fee = l.gene.MinTxFee()
	}
	nonce := uint64(ctx.Int64(nonceFlag.Name))
	if ctx.Int64(nonceFlag.Name) < 0 {
		acc, err := l.state.GetAccount(signerOf(key))
		if err != nil {
			return err
		}
		nonce = acc.Nonce()
	}

	trx, err := tx.NewBuilder(typ).
		To(to).
		Value(ctx.Uint64(valueFlag.Name)).
		Fee(fee).
		Nonce(nonce).
		Timestamp(uint64(time.Now().UnixMilli())).
		Data(data).
		Build(l.gene.Network())
	if err != nil {
		return err
	}
	if trx, err = tx.Sign(trx, key); err != nil {
		return err
	}

	if ctx.Bool(applyFlag.Name) {
		if err := processor.New(l.gene).Apply(l.state, trx); err != nil {
			return errors.Wrap(err, "apply")
		}
		if err := l.state.Commit(); err != nil {
			return err
		}
		logger.Info("transaction applied", "hash", trx.Hash(), "type", trx.Type())
	}
	fmt.Fprintln(ctx.App.Writer, trx)
	fmt.Fprintf(ctx.App.Writer, "0x%x\n", trx.Bytes())
	return nil
}

func decodeAction(ctx *cli.Context) error {
	b, err := parseHex(ctx.Args().First())
	if err != nil {
		return err
	}
	trx, err := tx.Decode(b)
	if err != nil {
		return err
	}
	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, trx)
	if err := trx.Verify(gene.Network()); err != nil {
		fmt.Fprintf(ctx.App.Writer, "Invalid: %v\n", err)
	} else {
		fmt.Fprintln(ctx.App.Writer, "Valid")
	}
	return nil
}

func holdersAction(ctx *cli.Context) error {
	var tag byte
	switch sym := ctx.String(coinFlag.Name); sym {
	case tx.CoinIncense.String():
		tag = state.TagIncense
	case tx.CoinIncensePiece.String():
		tag = state.TagIncensePiece
	default:
		return errors.Errorf("unsupported coin %q", sym)
	}

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	return state.IterateHolders(l.stateStore, tag, func(addr bic.Address, balance uint64) bool {
		fmt.Fprintf(ctx.App.Writer, "%v %d\n", addr, balance)
		return true
	})
}
