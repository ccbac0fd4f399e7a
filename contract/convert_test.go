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
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/icon-project/btp2/common/errors"
	"github.com/stretchr/testify/assert"
)

func Test_RawOf(t *testing.T) {
	tests := []struct {
		value    interface{}
		expected string
	}{
		{"0xabc", "0xabc"},
		{json.Number("1000"), "1000"},
		{true, "true"},
		{Integer("-0x2"), "-0x2"},
		{big.NewInt(-5), "-5"},
		{[]byte{0x01, 0xff}, "0x01ff"},
		{float64(12), "12"},
		{int32(-3), "-3"},
		{uint8(7), "7"},
		{float64(1e20), "100000000000000000000"},
		{float64(-1e19), "-10000000000000000000"},
	}
	for _, tt := range tests {
		s, err := RawOf(tt.value)
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, s)
	}
	_, err := RawOf(1.5)
	assert.Error(t, err)
	_, err = RawOf(math.Inf(1))
	assert.Error(t, err)
	_, err = RawOf([]string{"a"})
	assert.Error(t, err)

	assert.Equal(t, "7", MustRawOf(uint8(7)))
	assert.Panics(t, func() { MustRawOf(1.5) })
}

func Test_RawParamsOf(t *testing.T) {
	params := Params{}
	err := json.Unmarshal([]byte(`{"to":"0x01","amount":100,"flag":false,"skip":null}`), &params)
	assert.NoError(t, err)
	raw, err := RawParamsOf(params)
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"to": "0x01", "amount": "100", "flag": "false"}, raw)

	_, err = RawParamsOf(Params{"a": map[string]string{}})
	assert.True(t, ErrorCodeInvalidParameter.Equals(err), err)
}

func Test_Integer(t *testing.T) {
	for _, v := range []int64{0, 1, -2, 255, -65536} {
		i := FromBigInt(big.NewInt(v))
		bi, err := i.AsBigInt()
		assert.NoError(t, err)
		assert.Equal(t, v, bi.Int64())
	}
	assert.Equal(t, Integer("-0x2"), FromBigInt(big.NewInt(-2)))
	_, err := Integer("0xzz").AsBigInt()
	assert.Error(t, err)
}

func Test_ParamError(t *testing.T) {
	err := NewParamError("amount", ParseTypeSpec("uint"), "abc", ErrorCodeInvalidNumber.Errorf("invalid"))
	assert.Equal(t, ErrorCodeInvalidNumber, errors.CodeOf(err))
	assert.True(t, IsCodecError(err))
	assert.Contains(t, err.Error(), "name:amount type:uint256")
	assert.Equal(t, "InvalidNumber", ErrorCodeName(ErrorCodeInvalidNumber))
	assert.False(t, IsCodecError(errors.New("plain")))
}
