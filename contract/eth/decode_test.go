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
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/icon-project/btp2/common/errors"
	"github.com/stretchr/testify/assert"

	"github.com/icon-project/abi-scope/contract"
)

func outputsOf(types ...string) *contract.FunctionSpec {
	fn := &contract.FunctionSpec{Name: "f"}
	for _, s := range types {
		fn.Outputs = append(fn.Outputs, contract.NameAndTypeSpec{Type: contract.ParseTypeSpec(s)})
	}
	return fn
}

func Test_DecodeNegativeTwo(t *testing.T) {
	data := hexutil.MustDecode("0x" + strings.Repeat("f", 63) + "e")
	tokens, err := DecodeOutputs(outputsOf("int256"), data)
	if err != nil {
		assert.FailNow(t, "fail to DecodeOutputs", err)
	}
	assert.Equal(t, int64(-2), tokens[0].BigInt().Int64())
	assert.Equal(t, "-0x2", tokens[0].String())

	tokens, err = DecodeOutputs(outputsOf("uint256"), data)
	assert.NoError(t, err)
	assert.Equal(t, 1, tokens[0].BigInt().Sign())
}

func Test_DecodeTruncated(t *testing.T) {
	data := make([]byte, contract.WordBytes)
	_, err := DecodeOutputs(outputsOf("uint256", "uint256"), data)
	assert.Equal(t, contract.ErrorCodeTruncatedData, errors.CodeOf(err))

	_, err = DecodeOutputs(outputsOf("bool"), data[:31])
	assert.Equal(t, contract.ErrorCodeTruncatedData, errors.CodeOf(err))

	// offset points past the end
	_, err = DecodeOutputs(outputsOf("string"), hexutil.MustDecode("0x"+strings.Repeat("0", 62)+"40"))
	assert.Equal(t, contract.ErrorCodeTruncatedData, errors.CodeOf(err))

	// length exceeds the data
	b := Pack([]Token{NewStringToken("abc")})
	b[2*contract.WordBytes-1] = 0x30
	_, err = DecodeOutputs(outputsOf("string"), b)
	assert.Equal(t, contract.ErrorCodeTruncatedData, errors.CodeOf(err))
}

func Test_DecodeMalformed(t *testing.T) {
	word := func(s string) []byte {
		return hexutil.MustDecode("0x" + strings.Repeat("0", 64-len(s)) + s)
	}
	tests := []struct {
		t    string
		data []byte
	}{
		{"uint8", word("100")},
		{"int8", word("80")},
		{"int8", hexutil.MustDecode("0x" + strings.Repeat("f", 62) + "7f")},
		{"address", word("01" + strings.Repeat("0", 40))},
		{"bool", word("2")},
		{"bytes2", word("01")},
	}
	for _, tt := range tests {
		_, err := DecodeOutputs(outputsOf(tt.t), tt.data)
		assert.Equal(t, contract.ErrorCodeMalformedData, errors.CodeOf(err), "type:%s err:%v", tt.t, err)
	}
	_, err := DecodeOutputs(outputsOf("uint256[]"), word("20"))
	assert.Equal(t, contract.ErrorCodeUnsupportedType, errors.CodeOf(err))
}

func Test_DecodeRoundTrip(t *testing.T) {
	tests := []struct {
		t   string
		raw []string
	}{
		{"uint256", []string{"0", "1", "1000000000000000000", maxUint256.String()}},
		{"uint8", []string{"0", "255"}},
		{"int256", []string{"0", "1", "-1", "-2", "-" + pow255.String(), new(big.Int).Sub(pow255, big.NewInt(1)).String()}},
		{"int8", []string{"-128", "127", "-1"}},
		{"int64", []string{"-9223372036854775808", "9223372036854775807"}},
		{"address", []string{testAddress, common.Address{}.Hex()}},
		{"bool", []string{"true", "false"}},
		{"string", []string{"", "abc", strings.Repeat("long string ", 10)}},
		{"bytes", []string{"0x00", "0x0102030405", "0x" + strings.Repeat("ab", 70)}},
		{"bytes1", []string{"0x7f"}},
		{"bytes32", []string{"0x" + strings.Repeat("cd", 32)}},
	}
	for _, tt := range tests {
		for _, raw := range tt.raw {
			tk, err := EncodeValue(typeOf(tt.t), raw)
			if !assert.NoError(t, err, "type:%s raw:%s", tt.t, raw) {
				continue
			}
			tokens, err := DecodeOutputs(outputsOf(tt.t, tt.t), Pack([]Token{tk, tk}))
			if assert.NoError(t, err, "type:%s raw:%s", tt.t, raw) {
				assert.Equal(t, tk.String(), tokens[0].String())
				assert.Equal(t, tk.String(), tokens[1].String())
				assert.Equal(t, tk.Word, tokens[0].Word)
			}
		}
	}
}

func Test_DecodeMatchesGoEthereum(t *testing.T) {
	args := argumentsOf(t, "string", "int32", "bytes", "address", "bytes2")
	data, err := args.Pack("hello", int32(-7), []byte{0xca, 0xfe}, common.HexToAddress(testAddress), [2]byte{0x12, 0x34})
	if err != nil {
		assert.FailNow(t, "fail to Arguments.Pack", err)
	}
	tokens, err := DecodeOutputs(outputsOf("string", "int32", "bytes", "address", "bytes2"), data)
	if err != nil {
		assert.FailNow(t, "fail to DecodeOutputs", err)
	}
	values := make([]string, len(tokens))
	for i, tk := range tokens {
		values[i] = tk.String()
	}
	assert.Equal(t, []string{
		"hello",
		"-0x7",
		"0xcafe",
		common.HexToAddress(testAddress).Hex(),
		"0x1234",
	}, values)

	unpacked, err := args.Unpack(Pack(tokens))
	assert.NoError(t, err)
	assert.Equal(t, "hello", unpacked[0])
	assert.Equal(t, int32(-7), unpacked[1])
}

func Test_DecodeCallData(t *testing.T) {
	spec := &contract.Spec{}
	spec.AddFunction(*functionOf("transfer", "to", "address", "amount", "uint256"))
	spec.AddFunction(*functionOf("transfer", "to", "address", "amount", "uint256", "data", "bytes"))

	inputs := map[string]string{"to": testAddress, "amount": "5", "data": "0x01"}
	for _, sig := range []string{"address,uint256", "address,uint256,bytes"} {
		fn, err := spec.Function("transfer", sig)
		assert.NoError(t, err)
		b, err := PackCall(fn, inputs)
		assert.NoError(t, err)

		found, tokens, err := DecodeCallData(spec, b)
		if assert.NoError(t, err) {
			assert.Equal(t, fn.Signature(), found.Signature())
			values := NamedValues(found.Inputs, tokens)
			assert.Equal(t, "amount", values[1].Name)
			assert.Equal(t, "0x5", values[1].Value)
		}
	}
	_, _, err := DecodeCallData(spec, []byte{0x01})
	assert.Equal(t, contract.ErrorCodeTruncatedData, errors.CodeOf(err))
	_, _, err = DecodeCallData(spec, hexutil.MustDecode("0x12345678"))
	assert.Equal(t, contract.ErrorCodeSchemaNotFound, errors.CodeOf(err))
}
