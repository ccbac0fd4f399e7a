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
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/icon-project/abi-scope/contract"
)

// EncodeCall converts inputs to tokens in the declared parameter order.
// Every declared parameter must be supplied.
func EncodeCall(fn *contract.FunctionSpec, inputs map[string]string) ([]Token, error) {
	missing := make([]string, 0)
	for _, p := range fn.Inputs {
		if _, ok := inputs[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, contract.ErrorCodeMissingParameter.Errorf("missing params function:%s names:[%s]",
			fn.Signature(), strings.Join(missing, ","))
	}
	ret := make([]Token, len(fn.Inputs))
	for i, p := range fn.Inputs {
		raw := inputs[p.Name]
		tk, err := EncodeValue(p.Type, raw)
		if err != nil {
			return nil, contract.NewParamError(p.Name, p.Type, raw, err)
		}
		ret[i] = tk
	}
	return ret, nil
}

// Pack serializes tokens into head words followed by the tail of dynamic values.
func Pack(tokens []Token) []byte {
	headSize := len(tokens) * contract.WordBytes
	head := make([]byte, 0, headSize)
	tail := make([]byte, 0)
	for _, tk := range tokens {
		if tk.Type.IsDynamic() {
			head = append(head, wordOf(uint64(headSize+len(tail)))...)
			tail = append(tail, wordOf(uint64(len(tk.Bytes)))...)
			tail = append(tail, rightPad(tk.Bytes)...)
		} else {
			head = append(head, packStatic(tk)...)
		}
	}
	return append(head, tail...)
}

func packStatic(tk Token) []byte {
	switch tk.Type.TypeID {
	case contract.TUint, contract.TInt:
		b := tk.Word.Bytes32()
		return b[:]
	case contract.TAddress:
		return leftPad(tk.Address.Bytes())
	case contract.TBool:
		if tk.Bool {
			return wordOf(1)
		}
		return wordOf(0)
	default:
		return rightPad(tk.Bytes)
	}
}

func wordOf(v uint64) []byte {
	b := uint256.NewInt(v).Bytes32()
	return b[:]
}

func leftPad(b []byte) []byte {
	ret := make([]byte, contract.WordBytes)
	copy(ret[contract.WordBytes-len(b):], b)
	return ret
}

func rightPad(b []byte) []byte {
	n := (len(b) + contract.WordBytes - 1) / contract.WordBytes * contract.WordBytes
	ret := make([]byte, n)
	copy(ret, b)
	return ret
}

// PackCall returns the selector of fn followed by the packed inputs.
func PackCall(fn *contract.FunctionSpec, inputs map[string]string) ([]byte, error) {
	tokens, err := EncodeCall(fn, inputs)
	if err != nil {
		return nil, err
	}
	return append(fn.Selector(), Pack(tokens)...), nil
}

// CallData returns PackCall as 0x prefixed hex.
func CallData(fn *contract.FunctionSpec, inputs map[string]string) (string, error) {
	b, err := PackCall(fn, inputs)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(b), nil
}

// EncodeConstructor packs positional constructor arguments without a selector.
// A nil constructor accepts no arguments.
func EncodeConstructor(fn *contract.FunctionSpec, args []string) ([]byte, error) {
	var params []contract.NameAndTypeSpec
	if fn != nil {
		params = fn.Inputs
	}
	if len(args) < len(params) {
		names := make([]string, 0, len(params)-len(args))
		for _, p := range params[len(args):] {
			names = append(names, p.Name)
		}
		return nil, contract.ErrorCodeMissingParameter.Errorf("missing constructor params names:[%s]",
			strings.Join(names, ","))
	}
	if len(args) > len(params) {
		return nil, contract.ErrorCodeUnexpectedParameter.Errorf("too many constructor params expected:%d actual:%d",
			len(params), len(args))
	}
	tokens := make([]Token, len(params))
	for i, p := range params {
		tk, err := EncodeValue(p.Type, args[i])
		if err != nil {
			return nil, contract.NewParamError(p.Name, p.Type, args[i], err)
		}
		tokens[i] = tk
	}
	return Pack(tokens), nil
}
