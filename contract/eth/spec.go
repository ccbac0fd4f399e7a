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
	"bytes"
	"encoding/json"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/icon-project/abi-scope/contract"
)

const (
	SpecFormatABI = "abi"
)

func init() {
	contract.RegisterSpecFactory(NewSpecFromJSON, SpecFormatABI)
}

type artifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
}

// NewSpecFromJSON accepts either a Solidity ABI array or a compiler artifact
// carrying the array in its "abi" field.
func NewSpecFromJSON(b []byte) (*contract.Spec, error) {
	b = bytes.TrimSpace(b)
	name := ""
	if len(b) > 0 && b[0] == '{' {
		a := artifact{}
		if err := json.Unmarshal(b, &a); err != nil {
			return nil, contract.ErrorCodeInvalidSpec.Wrapf(err, "fail to Unmarshal artifact err:%s", err.Error())
		}
		if len(a.ABI) == 0 {
			return nil, contract.ErrorCodeInvalidSpec.Errorf("not found abi in artifact")
		}
		name, b = a.ContractName, a.ABI
	}
	out, err := abi.JSON(bytes.NewReader(b))
	if err != nil {
		return nil, contract.ErrorCodeInvalidSpec.Wrapf(err, "fail to abi.JSON err:%s", err.Error())
	}
	s := NewSpec(out)
	s.Name = name
	return s, nil
}

func NewSpec(out abi.ABI) *contract.Spec {
	spec := &contract.Spec{
		Functions: make(map[string][]contract.FunctionSpec),
	}
	// out.Methods is keyed by the deduplicated name, e.g. "transfer0"
	keys := make([]string, 0, len(out.Methods))
	for k := range out.Methods {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		spec.AddFunction(NewFunctionSpec(out.Methods[k]))
	}
	if out.Constructor.Type == abi.Constructor {
		c := NewFunctionSpec(out.Constructor)
		spec.Constructor = &c
	}
	return spec
}

func NewFunctionSpec(m abi.Method) contract.FunctionSpec {
	return contract.FunctionSpec{
		Name:            m.RawName,
		Inputs:          newParams(m.Inputs),
		Outputs:         newParams(m.Outputs),
		StateMutability: m.StateMutability,
	}
}

func newParams(args abi.Arguments) []contract.NameAndTypeSpec {
	ret := make([]contract.NameAndTypeSpec, len(args))
	for i, arg := range args {
		ret[i] = contract.NameAndTypeSpec{
			Name: arg.Name,
			Type: NewTypeSpec(arg.Type),
		}
	}
	return ret
}

// NewTypeSpec maps primitive ABI types. Containers and other types map to
// contract.TUnsupported, keeping the ABI name.
func NewTypeSpec(t abi.Type) contract.TypeSpec {
	switch t.T {
	case abi.IntTy:
		return contract.NewTypeSpec(contract.TInt, t.Size)
	case abi.UintTy:
		return contract.NewTypeSpec(contract.TUint, t.Size)
	case abi.BoolTy:
		return contract.NewTypeSpec(contract.TBool, 0)
	case abi.StringTy:
		return contract.NewTypeSpec(contract.TString, 0)
	case abi.AddressTy:
		return contract.NewTypeSpec(contract.TAddress, 0)
	case abi.BytesTy:
		return contract.NewTypeSpec(contract.TBytes, 0)
	case abi.FixedBytesTy:
		return contract.NewTypeSpec(contract.TFixedBytes, t.Size)
	default:
		return contract.TypeSpec{Name: t.String(), TypeID: contract.TUnsupported}
	}
}
