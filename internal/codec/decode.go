package codec

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
)

const (
	minInputSize  = 32 + 4 + 1 + 4
	minOutputSize = 8 + 1
	// a transaction needs at least version, two counts and lock time.
	minTxSize = 4 + 1 + 1 + 4
)

// DecodeHeader decodes an 80-byte block header.
func DecodeHeader(buf []byte) (*model.BlockHeader, error) {
	if len(buf) < model.HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrMalformedHeader, len(buf), model.HeaderSize)
	}
	h, err := readHeader(NewCursor(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}
	return h, nil
}

func readHeader(c *Cursor) (*model.BlockHeader, error) {
	raw, err := c.Bytes(model.HeaderSize)
	if err != nil {
		return nil, err
	}
	hc := NewCursor(raw)
	// the header cursor cannot run short after the length check above
	version, _ := hc.Int32()
	prev, _ := hc.Hash()
	merkle, _ := hc.Hash()
	timestamp, _ := hc.Uint32()
	bits, _ := hc.Uint32()
	nonce, _ := hc.Uint32()

	h := model.NewBlockHeader(version, prev, merkle, timestamp, bits, nonce)
	h.SetRaw(raw)
	return h, nil
}

// DecodeBlock decodes a block payload: header, transaction count and
// transactions. The whole buffer must be consumed.
func DecodeBlock(buf []byte) (*model.DecodedBlock, error) {
	c := NewCursor(buf)
	header, err := readHeader(c)
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedBlock, err)
	}
	count, err := c.Count(minTxSize)
	if err != nil {
		return nil, fmt.Errorf("%w: tx count: %w", ErrMalformedBlock, err)
	}

	txs := make([]*model.Transaction, 0, count)
	for i := 0; i < count; i++ {
		tx, err := readTransaction(c)
		if err != nil {
			return nil, fmt.Errorf("%w: tx %d: %w", ErrMalformedBlock, i, err)
		}
		txs = append(txs, tx)
	}
	if c.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d transactions", ErrMalformedBlock, c.Remaining(), count)
	}

	return &model.DecodedBlock{
		Header:       header,
		Transactions: txs,
		Size:         len(buf),
	}, nil
}

// DecodeTransaction decodes one transaction at the start of buf and returns
// it with the number of bytes consumed.
func DecodeTransaction(buf []byte) (*model.Transaction, int, error) {
	c := NewCursor(buf)
	tx, err := readTransaction(c)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrMalformedTransaction, err)
	}
	return tx, c.Pos(), nil
}

func readTransaction(c *Cursor) (*model.Transaction, error) {
	start := c.Pos()
	version, err := c.Int32()
	if err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}

	segwit := false
	marker, err := c.Peek(0)
	if err != nil {
		return nil, fmt.Errorf("input count: %w", err)
	}
	if marker == model.WitnessMarker {
		flag, err := c.Peek(1)
		if err != nil {
			return nil, fmt.Errorf("witness flag: %w", err)
		}
		// any other flag byte leaves the zero in place as an empty input count
		if flag == model.WitnessFlag {
			segwit = true
			_ = c.Skip(2)
		}
	}
	bodyStart := c.Pos()

	inCount, err := c.Count(minInputSize)
	if err != nil {
		return nil, fmt.Errorf("input count: %w", err)
	}
	inputs := make([]model.TxInput, inCount)
	for i := range inputs {
		if err := readInput(c, &inputs[i]); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}

	outCount, err := c.Count(minOutputSize)
	if err != nil {
		return nil, fmt.Errorf("output count: %w", err)
	}
	outputs := make([]model.TxOutput, outCount)
	for i := range outputs {
		if outputs[i].Value, err = c.Uint64(); err != nil {
			return nil, fmt.Errorf("output %d value: %w", i, err)
		}
		if outputs[i].ScriptPubKey, err = c.VarBytes(); err != nil {
			return nil, fmt.Errorf("output %d script: %w", i, err)
		}
	}
	bodyEnd := c.Pos()

	if segwit {
		for i := range inputs {
			stack, err := readWitness(c)
			if err != nil {
				return nil, fmt.Errorf("input %d witness: %w", i, err)
			}
			inputs[i].Witness = stack
		}
	}

	lockTime, err := c.Uint32()
	if err != nil {
		return nil, fmt.Errorf("lock time: %w", err)
	}

	tx := &model.Transaction{
		Version:    version,
		Inputs:     inputs,
		Outputs:    outputs,
		LockTime:   lockTime,
		HasWitness: segwit,
	}
	raw := c.buf[start:c.Pos()]
	if segwit {
		tx.SetTxID(doubleHash(raw[:4], c.buf[bodyStart:bodyEnd], raw[len(raw)-4:]))
	} else {
		tx.SetTxID(chainhash.DoubleHashH(raw))
	}
	return tx, nil
}

func readInput(c *Cursor, in *model.TxInput) error {
	var err error
	if in.PrevTxID, err = c.Hash(); err != nil {
		return fmt.Errorf("prev txid: %w", err)
	}
	if in.PrevIndex, err = c.Uint32(); err != nil {
		return fmt.Errorf("prev index: %w", err)
	}
	if in.ScriptSig, err = c.VarBytes(); err != nil {
		return fmt.Errorf("script sig: %w", err)
	}
	if in.Sequence, err = c.Uint32(); err != nil {
		return fmt.Errorf("sequence: %w", err)
	}
	return nil
}

func readWitness(c *Cursor) ([][]byte, error) {
	n, err := c.Count(1)
	if err != nil {
		return nil, err
	}
	stack := make([][]byte, n)
	for i := range stack {
		if stack[i], err = c.VarBytes(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return stack, nil
}

func doubleHash(parts ...[]byte) chainhash.Hash {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return chainhash.Hash(sha256.Sum256(h.Sum(nil)))
}
