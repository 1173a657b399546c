// Package script classifies output scripts and derives printable addresses.
package script

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// AddressKind is the pattern an output script matched.
type AddressKind string

const (
	P2PKH       AddressKind = "p2pkh"
	P2SH        AddressKind = "p2sh"
	P2WPKH      AddressKind = "p2wpkh"
	P2WSH       AddressKind = "p2wsh"
	P2TR        AddressKind = "p2tr"
	P2PK        AddressKind = "p2pk"
	NullData    AddressKind = "nulldata"
	NonStandard AddressKind = "nonstandard"
)

// Address is the result of classifying an output script. Encoded is empty
// when the script does not pay to a single address. Bare multisig scripts are
// non-standard with PubKeyCount set.
type Address struct {
	Kind        AddressKind
	Encoded     string
	PubKeyCount int
}

// HasAddress reports whether an encoded address is present.
func (a Address) HasAddress() bool {
	return a.Encoded != ""
}

// IsBareMultisig reports whether the script was an m-of-n multisig script.
func (a Address) IsBareMultisig() bool {
	return a.Kind == NonStandard && a.PubKeyCount > 0
}

// Interpreter derives addresses for one network.
type Interpreter struct {
	params *chaincfg.Params
}

// NewInterpreter returns an Interpreter for params.
func NewInterpreter(params *chaincfg.Params) *Interpreter {
	return &Interpreter{params: params}
}

// Params returns the network parameters used for encoding.
func (i *Interpreter) Params() *chaincfg.Params {
	return i.params
}

// Derive is DeriveAddress bound to the interpreter's network.
func (i *Interpreter) Derive(pkScript []byte) Address {
	return DeriveAddress(pkScript, i.params)
}

// DeriveAddress classifies pkScript and encodes its address for params.
// It never fails: scripts that do not match a known pattern, or whose
// payload cannot be encoded, are reported as non-standard.
func DeriveAddress(pkScript []byte, params *chaincfg.Params) Address {
	switch txscript.GetScriptClass(pkScript) {
	case txscript.PubKeyHashTy:
		// OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG
		return encode(P2PKH, func() (btcutil.Address, error) {
			return btcutil.NewAddressPubKeyHash(pkScript[3:23], params)
		})
	case txscript.ScriptHashTy:
		// OP_HASH160 <20> OP_EQUAL
		return encode(P2SH, func() (btcutil.Address, error) {
			return btcutil.NewAddressScriptHashFromHash(pkScript[2:22], params)
		})
	case txscript.WitnessV0PubKeyHashTy:
		return encode(P2WPKH, func() (btcutil.Address, error) {
			return btcutil.NewAddressWitnessPubKeyHash(pkScript[2:], params)
		})
	case txscript.WitnessV0ScriptHashTy:
		return encode(P2WSH, func() (btcutil.Address, error) {
			return btcutil.NewAddressWitnessScriptHash(pkScript[2:], params)
		})
	case txscript.WitnessV1TaprootTy:
		return encode(P2TR, func() (btcutil.Address, error) {
			return btcutil.NewAddressTaproot(pkScript[2:], params)
		})
	case txscript.PubKeyTy:
		return payToPubKey(pkScript, params)
	case txscript.MultiSigTy:
		// OP_m <pubkeys> OP_n OP_CHECKMULTISIG
		pubKeys, _, err := txscript.CalcMultiSigStats(pkScript)
		if err != nil {
			return Address{Kind: NonStandard}
		}
		return Address{Kind: NonStandard, PubKeyCount: pubKeys}
	case txscript.NullDataTy:
		return Address{Kind: NullData}
	default:
		return Address{Kind: NonStandard}
	}
}

// payToPubKey reports the pubkey-hash address of a bare public key, the way
// explorers show early coinbase outputs.
func payToPubKey(pkScript []byte, params *chaincfg.Params) Address {
	pushLen := int(pkScript[0])
	pub := pkScript[1 : 1+pushLen]
	return encode(P2PK, func() (btcutil.Address, error) {
		return btcutil.NewAddressPubKeyHash(btcutil.Hash160(pub), params)
	})
}

func encode(kind AddressKind, build func() (btcutil.Address, error)) Address {
	addr, err := build()
	if err != nil {
		return Address{Kind: NonStandard}
	}
	return Address{Kind: kind, Encoded: addr.EncodeAddress()}
}
