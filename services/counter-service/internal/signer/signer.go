// Package signer produces payout signatures the reward contract verifies
// with ecrecover.
package signer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrNoKey = errors.New("signer private key is not configured")

type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func New(hexKey string) (*Signer, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, ErrNoKey
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid signer private key: %w", err)
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// RewardHash is keccak256(abi.encodePacked(address user, address token, uint256 amount)).
func RewardHash(user, token common.Address, amount *big.Int) []byte {
	return crypto.Keccak256(
		user.Bytes(),
		token.Bytes(),
		math.U256Bytes(new(big.Int).Set(amount)),
	)
}

// SignReward signs the reward hash as an EIP-191 personal message, the same
// bytes a wallet's signMessage(hash) would produce. V is 27 or 28.
func (s *Signer) SignReward(user, token common.Address, amount *big.Int) (string, error) {
	if amount.Sign() < 0 {
		return "", fmt.Errorf("negative reward amount")
	}

	digest := accounts.TextHash(RewardHash(user, token, amount))
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign reward: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(sig), nil
}

// RecoverRewardSigner returns the address that produced signature.
func RecoverRewardSigner(user, token common.Address, amount *big.Int, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(sig))
	}

	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(RewardHash(user, token, amount)), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}
