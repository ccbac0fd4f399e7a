/*
 * Copyright 2023 ICON Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package eth

import (
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/icon-project/abi-scope/contract"
)

// Token is one encoded or decoded value. Which field is valid depends on
// Type.TypeID: Word for TUint and TInt, Address for TAddress, Bool for TBool,
// and Bytes for TString, TBytes and TFixedBytes.
type Token struct {
	Type    contract.TypeSpec
	Word    uint256.Int
	Address common.Address
	Bool    bool
	Bytes   []byte
}

func NewAddressToken(v common.Address) Token {
	return Token{Type: contract.NewTypeSpec(contract.TAddress, 0), Address: v}
}

func NewBoolToken(v bool) Token {
	return Token{Type: contract.NewTypeSpec(contract.TBool, 0), Bool: v}
}

func NewStringToken(v string) Token {
	return Token{Type: contract.NewTypeSpec(contract.TString, 0), Bytes: []byte(v)}
}

func NewBytesToken(v []byte) Token {
	return Token{Type: contract.NewTypeSpec(contract.TBytes, 0), Bytes: v}
}

func NewFixedBytesToken(v []byte) Token {
	return Token{Type: contract.NewTypeSpec(contract.TFixedBytes, len(v)), Bytes: v}
}

// NewUintToken panics if v is negative or does not fit in 256 bits.
func NewUintToken(bits int, v *big.Int) Token {
	t := Token{Type: contract.NewTypeSpec(contract.TUint, bits)}
	if v.Sign() < 0 {
		panic("negative value for uint token")
	}
	if overflow := t.Word.SetFromBig(v); overflow {
		panic("overflow value for uint token")
	}
	return t
}

// NewIntToken stores v as a 256-bit two's complement word.
func NewIntToken(bits int, v *big.Int) Token {
	t := Token{Type: contract.NewTypeSpec(contract.TInt, bits)}
	m := new(big.Int).Abs(v)
	if overflow := t.Word.SetFromBig(m); overflow {
		panic("overflow value for int token")
	}
	if v.Sign() < 0 {
		t.Word.Neg(&t.Word)
	}
	return t
}

func (t Token) Negative() bool {
	return t.Type.TypeID == contract.TInt && t.Word.Sign() < 0
}

// BigInt returns the numeric value, reinterpreting the word as signed for TInt.
func (t Token) BigInt() *big.Int {
	if t.Negative() {
		m := new(uint256.Int).Neg(&t.Word)
		return new(big.Int).Neg(m.ToBig())
	}
	return t.Word.ToBig()
}

// String returns the display form of the value.
func (t Token) String() string {
	switch t.Type.TypeID {
	case contract.TUint, contract.TInt:
		return string(contract.FromBigInt(t.BigInt()))
	case contract.TAddress:
		return t.Address.Hex()
	case contract.TBool:
		return strconv.FormatBool(t.Bool)
	case contract.TString:
		return string(t.Bytes)
	case contract.TBytes, contract.TFixedBytes:
		return hexutil.Encode(t.Bytes)
	default:
		return ""
	}
}

type tokenJSON struct {
	Type  contract.TypeSpec `json:"type"`
	Value string            `json:"value"`
}

// MarshalJSON implements json.Marshaler interface.
func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(tokenJSON{Type: t.Type, Value: t.String()})
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (t *Token) UnmarshalJSON(data []byte) error {
	v := tokenJSON{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	tk, err := EncodeValue(v.Type, v.Value)
	if err != nil {
		return err
	}
	*t = tk
	return nil
}

type NamedValue struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NamedValues pairs tokens with the parameter names they were decoded for.
func NamedValues(params []contract.NameAndTypeSpec, tokens []Token) []NamedValue {
	ret := make([]NamedValue, len(tokens))
	for i, tk := range tokens {
		ret[i] = NamedValue{Type: tk.Type.Canonical(), Value: tk.String()}
		if i < len(params) {
			ret[i].Name = params[i].Name
		}
	}
	return ret
}
