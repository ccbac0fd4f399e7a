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

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/icon-project/abi-scope/contract"
)

const (
	hexPrefix = "0x"
)

// EncodeValue converts raw text to a token of type t.
func EncodeValue(t contract.TypeSpec, raw string) (Token, error) {
	codecLogger.Traceln("encode type:", t.Canonical(), "raw:", raw)
	if !t.IsSupported() {
		return Token{}, contract.ErrorCodeUnsupportedType.Errorf("not supported type:%s", t.Name)
	}
	ret := Token{Type: contract.NewTypeSpec(t.TypeID, t.Size)}
	switch t.TypeID {
	case contract.TAddress:
		if !common.IsHexAddress(raw) {
			return Token{}, contract.ErrorCodeInvalidAddress.Errorf("invalid address:%q", raw)
		}
		ret.Address = common.HexToAddress(raw)
	case contract.TBool:
		switch raw {
		case "true":
			ret.Bool = true
		case "false":
			ret.Bool = false
		default:
			return Token{}, contract.ErrorCodeInvalidBool.Errorf("invalid bool:%q", raw)
		}
	case contract.TString:
		ret.Bytes = []byte(raw)
	case contract.TUint:
		v, err := parseUnsigned(raw)
		if err != nil {
			return Token{}, err
		}
		if v.BitLen() > t.Size {
			return Token{}, contract.ErrorCodeNumberOutOfRange.Errorf("out of range uint%d value:%s", t.Size, raw)
		}
		ret.Word.SetFromBig(v)
	case contract.TInt:
		neg := strings.HasPrefix(raw, "-")
		v, err := parseUnsigned(strings.TrimPrefix(raw, "-"))
		if err != nil {
			return Token{}, err
		}
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if (!neg && v.Cmp(limit) >= 0) || (neg && v.Cmp(limit) > 0) {
			return Token{}, contract.ErrorCodeNumberOutOfRange.Errorf("out of range int%d value:%s", t.Size, raw)
		}
		ret.Word.SetFromBig(v)
		if neg {
			ret.Word.Neg(&ret.Word)
		}
	case contract.TBytes:
		b, err := parseHex(raw)
		if err != nil {
			return Token{}, err
		}
		ret.Bytes = b
	case contract.TFixedBytes:
		b, err := parseHex(raw)
		if err != nil {
			return Token{}, err
		}
		if len(b) != t.Size {
			return Token{}, contract.ErrorCodeInvalidBytes.Errorf("invalid length expected:%d actual:%d", t.Size, len(b))
		}
		ret.Bytes = b
	}
	return ret, nil
}

// parseUnsigned parses decimal text, or hexadecimal text with the 0x prefix.
func parseUnsigned(raw string) (*big.Int, error) {
	base, digits := 10, raw
	if strings.HasPrefix(raw, hexPrefix) {
		base, digits = 16, raw[len(hexPrefix):]
	}
	if len(digits) == 0 || digits[0] == '+' || digits[0] == '-' {
		return nil, contract.ErrorCodeInvalidNumber.Errorf("invalid number:%q", raw)
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, contract.ErrorCodeInvalidNumber.Errorf("invalid number:%q", raw)
	}
	return v, nil
}

// parseHex decodes hex text with or without the 0x prefix.
func parseHex(raw string) ([]byte, error) {
	if !strings.HasPrefix(raw, hexPrefix) {
		raw = hexPrefix + raw
	}
	b, err := hexutil.Decode(raw)
	if err != nil {
		return nil, contract.ErrorCodeInvalidBytes.Wrapf(err, "invalid bytes:%q err:%s", raw, err.Error())
	}
	return b, nil
}

// DecodeHex decodes hex text, such as call data or a return buffer, with or
// without the 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	return parseHex(strings.TrimSpace(s))
}
