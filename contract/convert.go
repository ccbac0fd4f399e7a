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
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/intconv"
	"github.com/icon-project/btp2/common/log"
)

// Params maps parameter name to a raw value. Values are normally strings as
// typed by a user, but JSON scalars are accepted as well; see RawOf.
type Params map[string]interface{}

// Integer is the hex display form of a decoded integer, e.g. "0x1f" or "-0x2".
type Integer string

func (i Integer) AsBigInt() (*big.Int, error) {
	s := string(i)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	r, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
	if !ok || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, errors.Errorf("fail to convert big.Int value:%s", string(i))
	}
	if neg {
		r.Neg(r)
	}
	return r, nil
}

func FromBigInt(i *big.Int) Integer {
	return Integer(intconv.FormatBigInt(i))
}

func MustRawOf(value interface{}) string {
	ret, err := RawOf(value)
	if err != nil {
		log.Panicf("fail to RawOf err:%v", err)
	}
	return ret
}

// RawOf converts a scalar to the raw text form understood by the encoder.
func RawOf(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case Integer:
		return string(v), nil
	case *big.Int:
		return v.String(), nil
	case big.Int:
		return v.String(), nil
	case []byte:
		return "0x" + hex.EncodeToString(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", errors.Errorf("not supported number %v", v)
		}
		f := new(big.Float).SetFloat64(v)
		if !f.IsInt() {
			return "", errors.Errorf("not supported fractional number %v", v)
		}
		i, _ := f.Int(nil)
		return i.String(), nil
	default:
		rv := reflect.ValueOf(value)
		if rv.CanInt() {
			return strconv.FormatInt(rv.Int(), 10), nil
		} else if rv.CanUint() {
			return strconv.FormatUint(rv.Uint(), 10), nil
		}
		return "", errors.Errorf("not supported type %T", value)
	}
}

// RawParamsOf converts every value of params with RawOf.
func RawParamsOf(params Params) (map[string]string, error) {
	ret := make(map[string]string, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		s, err := RawOf(v)
		if err != nil {
			return nil, ErrorCodeInvalidParameter.Wrapf(err, "fail to RawOf param:%s err:%s", k, err.Error())
		}
		ret[k] = s
	}
	return ret, nil
}
