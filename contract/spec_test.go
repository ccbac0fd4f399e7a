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

package contract

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/icon-project/btp2/common/errors"
	"github.com/stretchr/testify/assert"
)

const (
	tokenSpec = `{
  "name": "Token",
  "constructor": {"inputs": [{"name": "supply", "type": "uint256"}]},
  "functions": {
    "transfer": [
      {"inputs": [{"name": "to", "type": "address"}, {"name": "amount", "type": "uint256"}],
       "outputs": [{"name": "", "type": "bool"}]},
      {"inputs": [{"name": "to", "type": "address"}, {"name": "amount", "type": "uint256"}, {"name": "data", "type": "bytes"}],
       "outputs": [{"name": "", "type": "bool"}]}
    ],
    "balanceOf": [
      {"name": "balanceOf", "inputs": [{"name": "owner", "type": "address"}],
       "outputs": [{"name": "", "type": "uint"}], "stateMutability": "view"}
    ],
    "batch": [
      {"inputs": [{"name": "ids", "type": "uint256[]"}]}
    ]
  }
}`
)

func Test_ParseTypeSpec(t *testing.T) {
	tests := []struct {
		name      string
		typeID    TypeTag
		size      int
		canonical string
	}{
		{"address", TAddress, 0, "address"},
		{"bool", TBool, 0, "bool"},
		{"string", TString, 0, "string"},
		{"bytes", TBytes, 0, "bytes"},
		{"uint", TUint, 256, "uint256"},
		{"uint8", TUint, 8, "uint8"},
		{"uint256", TUint, 256, "uint256"},
		{"int", TInt, 256, "int256"},
		{"int64", TInt, 64, "int64"},
		{"bytes1", TFixedBytes, 1, "bytes1"},
		{"bytes32", TFixedBytes, 32, "bytes32"},
		{"uint7", TUnsupported, 0, "uint7"},
		{"uint264", TUnsupported, 0, "uint264"},
		{"int0", TUnsupported, 0, "int0"},
		{"bytes0", TUnsupported, 0, "bytes0"},
		{"bytes33", TUnsupported, 0, "bytes33"},
		{"uint08", TUnsupported, 0, "uint08"},
		{"int0256", TUnsupported, 0, "int0256"},
		{"bytes032", TUnsupported, 0, "bytes032"},
		{"uint256[]", TUnsupported, 0, "uint256[]"},
		{"(address,uint256)", TUnsupported, 0, "(address,uint256)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ParseTypeSpec(tt.name)
			assert.Equal(t, tt.typeID, s.TypeID)
			assert.Equal(t, tt.size, s.Size)
			assert.Equal(t, tt.canonical, s.Canonical())
			assert.Equal(t, tt.typeID != TUnsupported, s.IsSupported())
		})
	}
	assert.True(t, ParseTypeSpec("string").IsDynamic())
	assert.True(t, ParseTypeSpec("bytes").IsDynamic())
	assert.False(t, ParseTypeSpec("bytes32").IsDynamic())
}

func Test_SpecUnmarshal(t *testing.T) {
	s, err := NewSpec(SpecFormatScope, []byte(tokenSpec))
	if err != nil {
		assert.FailNow(t, "fail to NewSpec", err)
	}
	assert.Equal(t, "Token", s.Name)
	assert.Equal(t, []string{"balanceOf", "batch", "transfer"}, s.FunctionNames())
	assert.Equal(t, "transfer", s.Functions["transfer"][1].Name)
	assert.Equal(t, []string{
		"balanceOf(address)",
		"batch(uint256[])",
		"transfer(address,uint256)",
		"transfer(address,uint256,bytes)",
	}, s.Signatures())
	assert.NotNil(t, s.Constructor)
	assert.Equal(t, TUint, s.Constructor.Inputs[0].Type.TypeID)

	fn, err := s.Function("balanceOf", "")
	assert.NoError(t, err)
	assert.True(t, fn.ReadOnly())
	assert.Equal(t, "uint256", fn.Outputs[0].Type.Canonical())

	b, err := json.Marshal(s)
	assert.NoError(t, err)
	s2, err := NewSpec(SpecFormatScope, b)
	assert.NoError(t, err)
	assert.Equal(t, s.Signatures(), s2.Signatures())
}

func Test_SpecUnmarshalInvalid(t *testing.T) {
	_, err := NewSpec(SpecFormatScope, []byte(`{"functions":{"a":[{"name":"b","inputs":[]}]}}`))
	assert.True(t, ErrorCodeInvalidSpec.Equals(err), err)

	_, err = NewSpec(SpecFormatScope, []byte(`{"functions":[]}`))
	assert.True(t, ErrorCodeInvalidSpec.Equals(err), err)

	_, err = NewSpec("unknown", []byte(`{}`))
	assert.True(t, ErrorCodeInvalidSpec.Equals(err), err)
}

func Test_SpecFunction(t *testing.T) {
	s := MustNewSpec(SpecFormatScope, []byte(tokenSpec))

	_, err := s.Function("approve", "")
	assert.Equal(t, ErrorCodeSchemaNotFound, errors.CodeOf(err))

	_, err = s.Function("transfer", "")
	assert.Equal(t, ErrorCodeAmbiguousOverload, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "transfer(address,uint256,bytes)")

	for _, sig := range []string{
		"transfer(address,uint256)",
		"address,uint256",
		"(address, uint)",
	} {
		fn, err := s.Function("transfer", sig)
		if assert.NoError(t, err, sig) {
			assert.Equal(t, "transfer(address,uint256)", fn.Signature())
		}
	}

	fn, err := s.Function("transfer", "address,uint256,bytes")
	assert.NoError(t, err)
	assert.Len(t, fn.Inputs, 3)

	_, err = s.Function("transfer", "approve(address,uint256)")
	assert.Equal(t, ErrorCodeSchemaNotFound, errors.CodeOf(err))
	_, err = s.Function("transfer", "address")
	assert.Equal(t, ErrorCodeSchemaNotFound, errors.CodeOf(err))

	fn, err = s.Function("balanceOf", "address")
	assert.NoError(t, err)
	assert.Equal(t, "balanceOf(address)", fn.Signature())
}

func Test_SpecSelector(t *testing.T) {
	s := MustNewSpec(SpecFormatScope, []byte(tokenSpec))
	fn, err := s.Function("transfer", "address,uint256")
	assert.NoError(t, err)
	assert.Equal(t, "a9059cbb", hex.EncodeToString(fn.Selector()))

	ids := s.MethodIdentifiers()
	assert.Equal(t, "70a08231", ids["balanceOf(address)"])
	assert.Len(t, ids, 4)

	found, err := s.FunctionBySelector([]byte{0xa9, 0x05, 0x9c, 0xbb, 0x00})
	assert.NoError(t, err)
	assert.Equal(t, fn, found)

	_, err = s.FunctionBySelector([]byte{0x00, 0x00, 0x00, 0x00})
	assert.Equal(t, ErrorCodeSchemaNotFound, errors.CodeOf(err))
	_, err = s.FunctionBySelector([]byte{0xa9})
	assert.Equal(t, ErrorCodeTruncatedData, errors.CodeOf(err))
}
