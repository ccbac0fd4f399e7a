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

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/icon-project/abi-scope/contract"
)

// DecodeOutputs decodes a returned buffer into the declared outputs of fn.
func DecodeOutputs(fn *contract.FunctionSpec, data []byte) ([]Token, error) {
	return decodeParams(fn.Outputs, data)
}

// DecodeCallData resolves the function by the selector of data and decodes
// its inputs.
func DecodeCallData(spec *contract.Spec, data []byte) (*contract.FunctionSpec, []Token, error) {
	fn, err := spec.FunctionBySelector(data)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := decodeParams(fn.Inputs, data[contract.SelectorSize:])
	if err != nil {
		return nil, nil, err
	}
	return fn, tokens, nil
}

func decodeParams(params []contract.NameAndTypeSpec, data []byte) ([]Token, error) {
	ret := make([]Token, len(params))
	for i, p := range params {
		tk, err := decodeAt(p.Type, data, i*contract.WordBytes)
		if err != nil {
			return nil, contract.NewParamError(p.Name, p.Type, "", err)
		}
		ret[i] = tk
	}
	return ret, nil
}

func wordAt(data []byte, offset int) ([]byte, error) {
	if offset < 0 || len(data) < offset+contract.WordBytes {
		return nil, contract.ErrorCodeTruncatedData.Errorf("not enough data offset:%d len:%d", offset, len(data))
	}
	return data[offset : offset+contract.WordBytes], nil
}

// intAt reads a word used as an offset or a length.
func intAt(data []byte, offset int) (int, error) {
	w, err := wordAt(data, offset)
	if err != nil {
		return 0, err
	}
	v := new(uint256.Int).SetBytes32(w)
	if !v.IsUint64() || v.Uint64() > uint64(len(data)) {
		return 0, contract.ErrorCodeTruncatedData.Errorf("out of data value:%s len:%d", v.Hex(), len(data))
	}
	return int(v.Uint64()), nil
}

func decodeAt(t contract.TypeSpec, data []byte, offset int) (Token, error) {
	codecLogger.Traceln("decode type:", t.Canonical(), "offset:", offset)
	if !t.IsSupported() {
		return Token{}, contract.ErrorCodeUnsupportedType.Errorf("not supported type:%s", t.Name)
	}
	w, err := wordAt(data, offset)
	if err != nil {
		return Token{}, err
	}
	ret := Token{Type: contract.NewTypeSpec(t.TypeID, t.Size)}
	switch t.TypeID {
	case contract.TUint:
		ret.Word.SetBytes32(w)
		if ret.Word.BitLen() > t.Size {
			return Token{}, contract.ErrorCodeMalformedData.Errorf("out of range uint%d word:0x%x", t.Size, w)
		}
	case contract.TInt:
		ret.Word.SetBytes32(w)
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		v := ret.BigInt()
		if v.Cmp(limit) >= 0 || v.Cmp(limit.Neg(limit)) < 0 {
			return Token{}, contract.ErrorCodeMalformedData.Errorf("invalid sign extension int%d word:0x%x", t.Size, w)
		}
	case contract.TAddress:
		if !isZero(w[:contract.WordBytes-common.AddressLength]) {
			return Token{}, contract.ErrorCodeMalformedData.Errorf("invalid address word:0x%x", w)
		}
		ret.Address = common.BytesToAddress(w)
	case contract.TBool:
		if !isZero(w[:contract.WordBytes-1]) || w[contract.WordBytes-1] > 1 {
			return Token{}, contract.ErrorCodeMalformedData.Errorf("invalid bool word:0x%x", w)
		}
		ret.Bool = w[contract.WordBytes-1] == 1
	case contract.TFixedBytes:
		if !isZero(w[t.Size:]) {
			return Token{}, contract.ErrorCodeMalformedData.Errorf("invalid bytes%d padding word:0x%x", t.Size, w)
		}
		ret.Bytes = append([]byte{}, w[:t.Size]...)
	case contract.TString, contract.TBytes:
		pos, err := intAt(data, offset)
		if err != nil {
			return Token{}, err
		}
		size, err := intAt(data, pos)
		if err != nil {
			return Token{}, err
		}
		start := pos + contract.WordBytes
		if len(data)-start < size {
			return Token{}, contract.ErrorCodeTruncatedData.Errorf("not enough data start:%d size:%d len:%d",
				start, size, len(data))
		}
		ret.Bytes = append([]byte{}, data[start:start+size]...)
	}
	return ret, nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
