package script

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func multisigScript(required, total int) []byte {
	script := []byte{0x50 + byte(required)}
	for i := 0; i < total; i++ {
		script = append(script, 33, 0x02)
		script = append(script, bytes.Repeat([]byte{byte(i + 1)}, 32)...)
	}
	return append(script, 0x50+byte(total), 0xae)
}

func TestDeriveAddress(t *testing.T) {
	const genesisPubKey = "04678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb6" +
		"49f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf11d5f"

	scriptHash := bytes.Repeat([]byte{0x11}, 20)
	p2shAddr, err := btcutil.NewAddressScriptHashFromHash(scriptHash, &chaincfg.MainNetParams)
	require.NoError(t, err)

	tests := []struct {
		name       string
		script     string
		raw        []byte
		params     *chaincfg.Params
		wantKind   AddressKind
		wantAddr   string
		wantPubKey int
	}{
		{
			name:     "p2pkh genesis key",
			script:   "76a91462e907b15cbf27d5425399ebf6f0fb50ebb88f1888ac",
			params:   &chaincfg.MainNetParams,
			wantKind: P2PKH,
			wantAddr: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
		},
		{
			name:     "p2pk genesis output",
			script:   "41" + genesisPubKey + "ac",
			params:   &chaincfg.MainNetParams,
			wantKind: P2PK,
			wantAddr: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
		},
		{
			name:     "p2sh",
			raw:      append(append([]byte{0xa9, 0x14}, scriptHash...), 0x87),
			params:   &chaincfg.MainNetParams,
			wantKind: P2SH,
			wantAddr: p2shAddr.EncodeAddress(),
		},
		{
			name:     "p2wpkh",
			script:   "0014751e76e8199196d454941c45d1b3a323f1433bd6",
			params:   &chaincfg.MainNetParams,
			wantKind: P2WPKH,
			wantAddr: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
		},
		{
			name:     "p2wsh testnet",
			script:   "00201863143c14c5166804bd19203356da136c985678cd4d27a1b8c6329604903262",
			params:   &chaincfg.TestNet3Params,
			wantKind: P2WSH,
			wantAddr: "tb1qrp33g0q5c5txsp9arysrx4k6zdkfs4nce4xj0gdcccefvpysxf3q0sl5k7",
		},
		{
			name:     "p2tr",
			script:   "512079be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
			params:   &chaincfg.MainNetParams,
			wantKind: P2TR,
			wantAddr: "bc1p0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vqzk5jj0",
		},
		{
			name:       "bare multisig 1-of-3",
			raw:        multisigScript(1, 3),
			params:     &chaincfg.MainNetParams,
			wantKind:   NonStandard,
			wantPubKey: 3,
		},
		{
			name:     "op_return",
			script:   "6a0b68656c6c6f20776f726c64",
			params:   &chaincfg.MainNetParams,
			wantKind: NullData,
		},
		{
			name:     "empty",
			script:   "",
			params:   &chaincfg.MainNetParams,
			wantKind: NonStandard,
		},
		{
			name:     "truncated p2pkh",
			script:   "76a91462e907b15cbf27d5425399ebf6",
			params:   &chaincfg.MainNetParams,
			wantKind: NonStandard,
		},
		{
			name:     "garbage",
			script:   "ffffffff4c",
			params:   &chaincfg.MainNetParams,
			wantKind: NonStandard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			if raw == nil {
				raw = mustHex(t, tt.script)
			}

			got := DeriveAddress(raw, tt.params)
			require.Equal(t, tt.wantKind, got.Kind)
			require.Equal(t, tt.wantAddr, got.Encoded)
			require.Equal(t, tt.wantPubKey, got.PubKeyCount)
			require.Equal(t, tt.wantAddr != "", got.HasAddress())
			require.Equal(t, tt.wantPubKey > 0, got.IsBareMultisig())
		})
	}
}

func TestInterpreter_Derive(t *testing.T) {
	in := NewInterpreter(&chaincfg.TestNet3Params)
	require.Same(t, &chaincfg.TestNet3Params, in.Params())

	got := in.Derive(mustHex(t, "0014751e76e8199196d454941c45d1b3a323f1433bd6"))
	require.Equal(t, P2WPKH, got.Kind)
	require.Equal(t, "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", got.Encoded)
}

func TestDeriveAddress_NeverPanics(t *testing.T) {
	prefixes := [][]byte{
		{0x76, 0xa9, 0x14},
		{0xa9, 0x14},
		{0x00, 0x14},
		{0x00, 0x20},
		{0x51, 0x20},
		{0x41},
		{0x21},
		{0x51, 0x21, 0x02},
	}
	for _, p := range prefixes {
		for n := 0; n < 70; n++ {
			script := append(append([]byte{}, p...), bytes.Repeat([]byte{0x02}, n)...)
			require.NotPanics(t, func() {
				DeriveAddress(script, &chaincfg.MainNetParams)
			})
		}
	}
}
