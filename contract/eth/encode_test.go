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
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/icon-project/btp2/common/errors"
	"github.com/stretchr/testify/assert"

	"github.com/icon-project/abi-scope/contract"
)

var (
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	pow255     = new(big.Int).Lsh(big.NewInt(1), 255)
)

func typeOf(name string) contract.TypeSpec {
	return contract.ParseTypeSpec(name)
}

func Test_EncodeValueError(t *testing.T) {
	tests := []struct {
		t    string
		raw  string
		code errors.Code
	}{
		{"address", "0xNOT20BYTES", contract.ErrorCodeInvalidAddress},
		{"address", "0xaaaa", contract.ErrorCodeInvalidAddress},
		{"bool", "True", contract.ErrorCodeInvalidBool},
		{"bool", "1", contract.ErrorCodeInvalidBool},
		{"uint256", "abc", contract.ErrorCodeInvalidNumber},
		{"uint256", "", contract.ErrorCodeInvalidNumber},
		{"uint256", "0x", contract.ErrorCodeInvalidNumber},
		{"uint256", "-1", contract.ErrorCodeInvalidNumber},
		{"uint256", "+1", contract.ErrorCodeInvalidNumber},
		{"uint256", "0xzz", contract.ErrorCodeInvalidNumber},
		{"int256", "-", contract.ErrorCodeInvalidNumber},
		{"int256", "--1", contract.ErrorCodeInvalidNumber},
		{"uint8", "256", contract.ErrorCodeNumberOutOfRange},
		{"uint8", "0x100", contract.ErrorCodeNumberOutOfRange},
		{"uint256", "0x1" + strings.Repeat("0", 64), contract.ErrorCodeNumberOutOfRange},
		{"int8", "128", contract.ErrorCodeNumberOutOfRange},
		{"int8", "-129", contract.ErrorCodeNumberOutOfRange},
		{"int256", pow255.String(), contract.ErrorCodeNumberOutOfRange},
		{"bytes", "0xzz", contract.ErrorCodeInvalidBytes},
		{"bytes", "abc", contract.ErrorCodeInvalidBytes},
		{"bytes4", "0x010203", contract.ErrorCodeInvalidBytes},
		{"bytes4", "0x0102030405", contract.ErrorCodeInvalidBytes},
		{"uint256[]", "[]", contract.ErrorCodeUnsupportedType},
		{"(uint256,bool)", "", contract.ErrorCodeUnsupportedType},
	}
	for _, tt := range tests {
		_, err := EncodeValue(typeOf(tt.t), tt.raw)
		assert.Equal(t, tt.code, errors.CodeOf(err), "type:%s raw:%s err:%v", tt.t, tt.raw, err)
	}
}

func Test_EncodeValue(t *testing.T) {
	addr := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	tests := []struct {
		t        string
		raw      string
		expected Token
	}{
		{"address", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", NewAddressToken(addr)},
		{"address", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", NewAddressToken(addr)},
		{"bool", "true", NewBoolToken(true)},
		{"bool", "false", NewBoolToken(false)},
		{"string", "hello, 世界", NewStringToken("hello, 世界")},
		{"string", "", NewStringToken("")},
		{"uint", "1000", NewUintToken(256, big.NewInt(1000))},
		{"uint8", "255", NewUintToken(8, big.NewInt(255))},
		{"uint256", maxUint256.String(), NewUintToken(256, maxUint256)},
		{"int8", "127", NewIntToken(8, big.NewInt(127))},
		{"int8", "-128", NewIntToken(8, big.NewInt(-128))},
		{"int256", "-0x2", NewIntToken(256, big.NewInt(-2))},
		{"int256", "-" + pow255.String(), NewIntToken(256, new(big.Int).Neg(pow255))},
		{"bytes", "0102ff", NewBytesToken([]byte{0x01, 0x02, 0xff})},
		{"bytes4", "0xdeadbeef", NewFixedBytesToken([]byte{0xde, 0xad, 0xbe, 0xef})},
	}
	for _, tt := range tests {
		tk, err := EncodeValue(typeOf(tt.t), tt.raw)
		if assert.NoError(t, err, "type:%s raw:%s", tt.t, tt.raw) {
			assert.Equal(t, tt.expected, tk, "type:%s raw:%s", tt.t, tt.raw)
		}
	}
}

func Test_EncodeValueNumberBase(t *testing.T) {
	for _, v := range []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(0xfff),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
		pow255,
		maxUint256,
	} {
		dec, err := EncodeValue(typeOf("uint256"), v.String())
		assert.NoError(t, err)
		hex, err := EncodeValue(typeOf("uint256"), "0x"+v.Text(16))
		assert.NoError(t, err)
		assert.Equal(t, dec, hex)
		assert.Equal(t, 0, v.Cmp(dec.BigInt()))

		if v.Cmp(pow255) < 0 {
			signed, err := EncodeValue(typeOf("int256"), v.String())
			assert.NoError(t, err)
			assert.Equal(t, dec.Word, signed.Word)
		}
	}
}

func Test_EncodeValueNegative(t *testing.T) {
	for _, m := range []*big.Int{
		big.NewInt(1),
		big.NewInt(2),
		big.NewInt(0x7fffffff),
		new(big.Int).Sub(pow255, big.NewInt(1)),
		pow255,
	} {
		tk, err := EncodeValue(typeOf("int256"), "-"+m.String())
		assert.NoError(t, err)
		assert.True(t, tk.Negative())
		expected := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), m)
		assert.Equal(t, 0, expected.Cmp(tk.Word.ToBig()))
		assert.Equal(t, 0, new(big.Int).Neg(m).Cmp(tk.BigInt()))
	}
	tk, err := EncodeValue(typeOf("int256"), "-0")
	assert.NoError(t, err)
	assert.True(t, tk.Word.IsZero())
}

func Test_EncodeValueEmptyBytes(t *testing.T) {
	for _, raw := range []string{"", "0x"} {
		tk, err := EncodeValue(typeOf("bytes"), raw)
		assert.NoError(t, err)
		assert.Len(t, tk.Bytes, 0)
		assert.Equal(t, "0x", tk.String())
	}
}

func Test_TokenString(t *testing.T) {
	tests := []struct {
		t        string
		raw      string
		expected string
	}{
		{"uint256", "1000000000000000000", "0xde0b6b3a7640000"},
		{"int256", "-2", "-0x2"},
		{"address", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa").Hex()},
		{"bool", "true", "true"},
		{"string", "abc", "abc"},
		{"bytes", "ABCD", "0xabcd"},
		{"bytes2", "0x0001", "0x0001"},
	}
	for _, tt := range tests {
		tk, err := EncodeValue(typeOf(tt.t), tt.raw)
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, tk.String())

		b, err := json.Marshal(tk)
		assert.NoError(t, err)
		var parsed Token
		assert.NoError(t, json.Unmarshal(b, &parsed))
		assert.Equal(t, tk, parsed)
	}
}
