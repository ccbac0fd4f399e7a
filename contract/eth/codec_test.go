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
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/stretchr/testify/assert"

	"github.com/icon-project/abi-scope/contract"
)

const (
	erc20ABI = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"name_","type":"string"},{"name":"supply","type":"uint256"}]},
  {"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"permit","stateMutability":"nonpayable","inputs":[{"name":"digest","type":"bytes32"},{"name":"ids","type":"uint256[]"}],"outputs":[]},
  {"type":"event","name":"Transfer","anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}]}
]`
)

func Test_NewSpecFromABI(t *testing.T) {
	s, err := contract.NewSpec(SpecFormatABI, []byte(erc20ABI))
	if err != nil {
		assert.FailNow(t, "fail to NewSpec", err)
	}
	assert.Equal(t, []string{"balanceOf", "permit", "symbol", "transfer"}, s.FunctionNames())
	assert.Len(t, s.Functions["transfer"], 2)
	if assert.NotNil(t, s.Constructor) {
		assert.Equal(t, []string{"string", "uint256"}, s.Constructor.Types())
	}

	fn, err := s.Function("permit", "")
	assert.NoError(t, err)
	assert.Equal(t, contract.TFixedBytes, fn.Inputs[0].Type.TypeID)
	assert.Equal(t, 32, fn.Inputs[0].Type.Size)
	assert.False(t, fn.Inputs[1].Type.IsSupported())
	assert.Equal(t, "permit(bytes32,uint256[])", fn.Signature())

	out, err := abi.JSON(strings.NewReader(erc20ABI))
	assert.NoError(t, err)
	for _, m := range out.Methods {
		found, err := s.FunctionBySelector(m.ID)
		if assert.NoError(t, err, m.Sig) {
			assert.Equal(t, m.Sig, found.Signature())
		}
	}

	artifact := `{"contractName":"ERC20","abi":` + erc20ABI + `}`
	s2, err := contract.NewSpec(SpecFormatABI, []byte(artifact))
	assert.NoError(t, err)
	assert.Equal(t, "ERC20", s2.Name)
	assert.Equal(t, s.Signatures(), s2.Signatures())

	_, err = contract.NewSpec(SpecFormatABI, []byte(`{"contractName":"x"}`))
	assert.True(t, contract.ErrorCodeInvalidSpec.Equals(err), err)
	_, err = contract.NewSpec(SpecFormatABI, []byte(`[{"type":"function","inputs":[{"type":"foo"}]}]`))
	assert.True(t, contract.ErrorCodeInvalidSpec.Equals(err), err)
}

func Test_NewSpecFromJSONConstructor(t *testing.T) {
	s, err := NewSpecFromJSON([]byte(`[{"type":"constructor","inputs":[{"name":"supply","type":"uint256"}]}]`))
	if err != nil {
		assert.FailNow(t, "fail to NewSpecFromJSON", err)
	}
	if !assert.NotNil(t, s.Constructor) {
		return
	}
	assert.Equal(t, []string{"uint256"}, s.Constructor.Types())
	assert.Equal(t, "supply", s.Constructor.Inputs[0].Name)

	b, err := EncodeConstructor(s.Constructor, []string{"1"})
	assert.NoError(t, err)
	assert.Equal(t, "0x"+strings.Repeat("0", 63)+"1", hexutil.Encode(b))

	s, err = NewSpecFromJSON([]byte(`[{"type":"function","name":"f","inputs":[]}]`))
	assert.NoError(t, err)
	assert.Nil(t, s.Constructor)
}

func Test_Codec(t *testing.T) {
	c := NewCodec(contract.MustNewSpec(SpecFormatABI, []byte(erc20ABI)), log.GlobalLogger())

	_, _, err := c.Encode("transfer", "", contract.Params{"to": testAddress, "amount": "1"})
	assert.Equal(t, contract.ErrorCodeAmbiguousOverload, errors.CodeOf(err))

	fn, tokens, err := c.Encode("transfer", "address,uint256", contract.Params{"to": testAddress, "amount": float64(1)})
	assert.NoError(t, err)
	assert.Equal(t, "transfer(address,uint256)", fn.Signature())
	assert.Equal(t, "0x1", tokens[1].String())

	data, err := c.CallData("balanceOf", "", contract.Params{"owner": testAddress})
	assert.NoError(t, err)
	assert.Equal(t, "0x70a08231000000000000000000000000aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", data)

	b, err := DecodeHex(data)
	assert.NoError(t, err)
	fn, tokens, err = c.DecodeCallData(b)
	assert.NoError(t, err)
	assert.Equal(t, "balanceOf(address)", fn.Signature())
	assert.Len(t, tokens, 1)

	ret, err := DecodeHex("0x00000000000000000000000000000000000000000000000000000000000003e8")
	assert.NoError(t, err)
	_, tokens, err = c.Decode("balanceOf", "", ret)
	assert.NoError(t, err)
	assert.Equal(t, "0x3e8", tokens[0].String())

	_, _, err = c.Decode("symbol", "", ret)
	assert.Equal(t, contract.ErrorCodeTruncatedData, errors.CodeOf(err))

	_, _, err = c.Encode("permit", "", contract.Params{"digest": "0x" + strings.Repeat("00", 32), "ids": "[]"})
	assert.Equal(t, contract.ErrorCodeUnsupportedType, errors.CodeOf(err))

	_, _, err = c.Encode("approve", "", contract.Params{})
	assert.Equal(t, contract.ErrorCodeSchemaNotFound, errors.CodeOf(err))

	ctor, err := c.EncodeConstructor([]string{"Token", "100"})
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(ctor, "0x"+strings.Repeat("0", 62)+"40"))

	ids := c.MethodIdentifiers()
	assert.Equal(t, "a9059cbb", ids["transfer(address,uint256)"])
	for sig, id := range ids {
		m, ok := methodBySig(c.Spec(), sig)
		if assert.True(t, ok, sig) {
			assert.Equal(t, id, hex.EncodeToString(m.Selector()))
		}
	}
}

func methodBySig(s *contract.Spec, sig string) (*contract.FunctionSpec, bool) {
	name := sig[:strings.IndexByte(sig, '(')]
	fn, err := s.Function(name, sig)
	return fn, err == nil
}
