// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-tty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/genesis"
	"github.com/incensechain/bic/kv"
	"github.com/incensechain/bic/muxdb"
	"github.com/incensechain/bic/sqlstore"
	"github.com/incensechain/bic/state"
)

const (
	stateBucket = kv.Bucket("s")
	propsBucket = kv.Bucket("p")
)

// ledger is an opened ledger of a network.
type ledger struct {
	gene       *genesis.Genesis
	dir        string
	stateStore kv.Store
	state      *state.State
	close      func() error
}

func (l *ledger) Close() error {
	logger.Debug("closing database...", "dir", l.dir)
	return l.close()
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	network := ctx.GlobalString(networkFlag.Name)
	if n, err := bic.ParseNetwork(network); err == nil {
		return genesis.ForNetwork(n)
	}
	gene, err := genesis.LoadCustom(network)
	if err != nil {
		return nil, errors.Wrapf(err, "network %q", network)
	}
	return gene, nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

// openLedger opens the database selected by flags and sets up the genesis if it's new.
func openLedger(ctx *cli.Context) (*ledger, error) {
	gene, err := selectGenesis(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := makeInstanceDir(ctx, gene)
	if err != nil {
		return nil, err
	}

	var (
		stateStore, props kv.Store
		closeDB           func() error
	)
	switch engine := ctx.GlobalString(dbFlag.Name); engine {
	case "leveldb":
		db, err := muxdb.Open(filepath.Join(dir, "main.db"), &muxdb.Options{
			Network:                gene.Network(),
			OpenFilesCacheCapacity: 500,
			ReadCacheMB:            16,
			WriteBufferMB:          16,
		})
		if err != nil {
			return nil, err
		}
		stateStore, props, closeDB = db.StateStore(), db.NewStore("genesis.props"), db.Close
	case "sqlite":
		db, err := sqlstore.New(filepath.Join(dir, "main.sqlite"))
		if err != nil {
			return nil, err
		}
		stateStore, props, closeDB = stateBucket.NewStore(db), propsBucket.NewStore(db), db.Close
	default:
		return nil, errors.Errorf("unsupported db %q", engine)
	}

	if err := gene.Setup(stateStore, props); err != nil {
		closeDB()
		return nil, err
	}
	logger.Debug("ledger opened", "network", gene.Name(), "dir", dir)

	return &ledger{
		gene:       gene,
		dir:        dir,
		stateStore: stateStore,
		state:      state.New(stateStore, state.WithCacheSize(normalizeCacheSize(ctx.GlobalInt(cacheFlag.Name)))),
		close:      closeDB,
	}, nil
}

// normalizeCacheSize limits the cache size to 1/4 of the physical ram.
func normalizeCacheSize(sizeMB int) int {
	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
		return sizeMB
	}
	if limitMB := int(mem.Total / 1024 / 1024 / 4); sizeMB > limitMB {
		logger.Warn("cache size(MB) limited", "limit", limitMB)
		return limitMB
	}
	return sizeMB
}

func readKeyFromNewTTY(prompt string) (string, error) {
	t, err := tty.Open()
	if err != nil {
		return "", err
	}
	defer t.Close()
	fmt.Fprint(t.Output(), prompt)
	return t.ReadPasswordNoEcho()
}

// parseKey parses the hex key, or reads it from the terminal if s is empty.
func parseKey(s string) (*ecdsa.PrivateKey, error) {
	if s == "" {
		var err error
		if s, err = readKeyFromNewTTY("Enter private key: "); err != nil {
			return nil, errors.Wrapf(err, "missing -%s", keyFlag.Name)
		}
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "key")
	}
	return key, nil
}

// parseHex decodes hex with or without the 0x prefix.
func parseHex(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, b...), nil
}

func signerOf(key *ecdsa.PrivateKey) bic.Address {
	return bic.PubkeyToAddress(&key.PublicKey)
}

// copy from go-ethereum
func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.incensechain.bic")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "org.incensechain.bic")
		} else {
			return filepath.Join(home, ".org.incensechain.bic")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
