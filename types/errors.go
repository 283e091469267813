package types

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotSupported = errors.New("operation not supported by chain")
	ErrTxNotFound   = errors.New("tx not found")
)

type ChainNotFoundErr struct {
	chain string
}

func NewChainNotFoundErr(chain string) error {
	return &ChainNotFoundErr{chain: chain}
}

func (e *ChainNotFoundErr) Error() string {
	return fmt.Sprintf("chain %q is not configured", e.chain)
}

type NoHealthyClientErr struct {
	chain string
}

func NewNoHealthyClientErr(chain string) error {
	return &NoHealthyClientErr{chain: chain}
}

func (e *NoHealthyClientErr) Error() string {
	return fmt.Sprintf("No healthy client for chain %s", e.chain)
}

type RateLimitErr struct {
	source string
	msg    string
}

func NewRateLimitErr(source, msg string) error {
	return &RateLimitErr{source: source, msg: msg}
}

func (e *RateLimitErr) Error() string {
	return fmt.Sprintf("rate limit reached on %s: %s", e.source, e.msg)
}

type MalformedRecipientErr struct {
	chain     string
	recipient []byte
	tried     []string
}

func NewMalformedRecipientErr(chain string, recipient []byte, tried []string) error {
	return &MalformedRecipientErr{chain: chain, recipient: recipient, tried: tried}
}

func (e *MalformedRecipientErr) Error() string {
	return fmt.Sprintf("unable to decode %s address %x, tried formats %s", e.chain, e.recipient,
		strings.Join(e.tried, ", "))
}

type DecodeEventErr struct {
	chain  string
	txHash string
	err    error
}

func NewDecodeEventErr(chain, txHash string, err error) error {
	return &DecodeEventErr{chain: chain, txHash: txHash, err: err}
}

func (e *DecodeEventErr) Error() string {
	return fmt.Sprintf("cannot decode event of tx %s on %s: %v", e.txHash, e.chain, e.err)
}

func (e *DecodeEventErr) Unwrap() error {
	return e.err
}

// IsRateLimit reports whether err is (or looks like) a provider rate limit.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var rl *RateLimitErr
	if errors.As(err, &rl) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "rate limit")
}

// IsTransient reports whether the failed unit of work should simply be retried on a later tick.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var cnf *ChainNotFoundErr
	var nhc *NoHealthyClientErr
	return IsRateLimit(err) || errors.As(err, &cnf) || errors.As(err, &nhc)
}

// IsMalformed reports whether retrying err can never succeed.
func IsMalformed(err error) bool {
	var mr *MalformedRecipientErr
	var de *DecodeEventErr
	return errors.As(err, &mr) || errors.As(err, &de)
}
