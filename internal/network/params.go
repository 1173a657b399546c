// Package network resolves coin and network names to chain parameters.
package network

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	ltcchaincfg "github.com/ltcsuite/ltcd/chaincfg"
)

type Coin string
type Network string

var (
	BTC Coin = "btc"
	LTC Coin = "ltc"
)

var (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Regtest Network = "regtest"
	Signet  Network = "signet"
)

// Params returns btcd-typed chain parameters for the coin and network.
// Litecoin parameters are the litecoin address magics applied to a copy of the
// matching bitcoin parameters.
func Params(coin Coin, network Network) (*chaincfg.Params, error) {
	switch Coin(strings.ToLower(string(coin))) {
	case BTC, "bitcoin":
		return bitcoinParams(network)
	case LTC, "litecoin":
		return litecoinParams(network)
	default:
		return nil, fmt.Errorf("unsupported coin %q", coin)
	}
}

func bitcoinParams(network Network) (*chaincfg.Params, error) {
	switch strings.ToLower(string(network)) {
	case "main", "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}

func litecoinParams(network Network) (*chaincfg.Params, error) {
	var (
		base *chaincfg.Params
		ltc  *ltcchaincfg.Params
	)
	switch strings.ToLower(string(network)) {
	case "main", "mainnet", "litecoin":
		base, ltc = &chaincfg.MainNetParams, &ltcchaincfg.MainNetParams
	case "testnet", "testnet4":
		base, ltc = &chaincfg.TestNet3Params, &ltcchaincfg.TestNet4Params
	case "regtest":
		base, ltc = &chaincfg.RegressionNetParams, &ltcchaincfg.RegressionNetParams
	default:
		return nil, fmt.Errorf("unsupported litecoin network %q", network)
	}
	return applyLitecoinParams(base, ltc), nil
}

func applyLitecoinParams(base *chaincfg.Params, ltc *ltcchaincfg.Params) *chaincfg.Params {
	params := *base
	params.Name = ltc.Name
	params.Net = wire.BitcoinNet(ltc.Net)

	genesis := chainhash.Hash(*ltc.GenesisHash)
	params.GenesisHash = &genesis
	params.GenesisBlock = nil

	params.PubKeyHashAddrID = ltc.PubKeyHashAddrID
	params.ScriptHashAddrID = ltc.ScriptHashAddrID
	params.PrivateKeyID = ltc.PrivateKeyID
	params.WitnessPubKeyHashAddrID = ltc.WitnessPubKeyHashAddrID
	params.WitnessScriptHashAddrID = ltc.WitnessScriptHashAddrID
	params.Bech32HRPSegwit = ltc.Bech32HRPSegwit
	params.Checkpoints = nil
	return &params
}

// Magic returns the 4-byte marker the node writes before every block record.
func Magic(params *chaincfg.Params) [4]byte {
	var m [4]byte
	binary.LittleEndian.PutUint32(m[:], uint32(params.Net))
	return m
}
