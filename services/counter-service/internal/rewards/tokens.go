package rewards

import (
	"fmt"
	"math/big"

	"github.com/devayla/base-counter/common/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type Token struct {
	Type     models.TokenType
	Address  common.Address
	Decimals int32
}

// Payout tokens on Base.
var tokens = map[models.TokenType]Token{
	models.TokenUSDC: {Type: models.TokenUSDC, Address: common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), Decimals: 6},
	models.TokenPEPE: {Type: models.TokenPEPE, Address: common.HexToAddress("0x25d887Ce7a35172C62FeBFD67a1856F20FaEbB00"), Decimals: 18},
	models.TokenCRSH: {Type: models.TokenCRSH, Address: common.HexToAddress("0xe461003E78A7bF4F14F0D30b3ac490701980aB07"), Decimals: 18},
	models.TokenBOOP: {Type: models.TokenBOOP, Address: common.HexToAddress("0x13A7DeDb7169a17bE92B0E3C7C2315B46f4772B3"), Decimals: 18},
}

func Lookup(tokenType models.TokenType) (Token, error) {
	token, ok := tokens[tokenType]
	if !ok {
		return Token{}, fmt.Errorf("no token address for %q", tokenType)
	}
	return token, nil
}

func USDC() Token {
	return tokens[models.TokenUSDC]
}

// ToUnits converts a human amount to integer token units, truncating any
// precision beyond the token's decimals.
func (t Token) ToUnits(amount decimal.Decimal) *big.Int {
	return amount.Shift(t.Decimals).Floor().BigInt()
}
