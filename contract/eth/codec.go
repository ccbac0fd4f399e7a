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
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/abi-scope/contract"
)

var (
	codecLogger = log.New()
)

func init() {
	codecLogger.SetLevel(log.DebugLevel)
}

// Codec binds a contract schema. It holds no mutable state and is safe for
// concurrent use.
type Codec struct {
	s *contract.Spec
	l log.Logger
}

func NewCodec(s *contract.Spec, l log.Logger) *Codec {
	return &Codec{
		s: s,
		l: l.WithFields(log.Fields{log.FieldKeyModule: "codec"}),
	}
}

func (c *Codec) Spec() *contract.Spec {
	return c.s
}

func (c *Codec) Encode(name, signature string, params contract.Params) (*contract.FunctionSpec, []Token, error) {
	fn, inputs, err := c.prepare(name, signature, params)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := EncodeCall(fn, inputs)
	if err != nil {
		c.l.Debugf("fail to EncodeCall function:%s err:%v", fn.Signature(), err)
		return nil, nil, err
	}
	return fn, tokens, nil
}

func (c *Codec) CallData(name, signature string, params contract.Params) (string, error) {
	fn, inputs, err := c.prepare(name, signature, params)
	if err != nil {
		return "", err
	}
	data, err := CallData(fn, inputs)
	if err != nil {
		c.l.Debugf("fail to CallData function:%s err:%v", fn.Signature(), err)
		return "", err
	}
	c.l.Tracef("CallData function:%s data:%s", fn.Signature(), data)
	return data, nil
}

func (c *Codec) prepare(name, signature string, params contract.Params) (*contract.FunctionSpec, map[string]string, error) {
	fn, err := c.s.Function(name, signature)
	if err != nil {
		return nil, nil, err
	}
	inputs, err := contract.RawParamsOf(params)
	if err != nil {
		return nil, nil, err
	}
	return fn, inputs, nil
}

func (c *Codec) Decode(name, signature string, data []byte) (*contract.FunctionSpec, []Token, error) {
	fn, err := c.s.Function(name, signature)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := DecodeOutputs(fn, data)
	if err != nil {
		c.l.Debugf("fail to DecodeOutputs function:%s data:%s err:%v", fn.Signature(), hexutil.Encode(data), err)
		return nil, nil, err
	}
	return fn, tokens, nil
}

func (c *Codec) DecodeCallData(data []byte) (*contract.FunctionSpec, []Token, error) {
	fn, tokens, err := DecodeCallData(c.s, data)
	if err != nil {
		c.l.Debugf("fail to DecodeCallData data:%s err:%v", hexutil.Encode(data), err)
		return nil, nil, err
	}
	return fn, tokens, nil
}

func (c *Codec) EncodeConstructor(args []string) (string, error) {
	b, err := EncodeConstructor(c.s.Constructor, args)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(b), nil
}

func (c *Codec) MethodIdentifiers() map[string]string {
	return c.s.MethodIdentifiers()
}
