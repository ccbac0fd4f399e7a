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
	"sort"

	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
)

const (
	SpecFormatScope = "scope"
)

type SpecFactory func(b []byte) (*Spec, error)

var (
	sfMap = make(map[string]SpecFactory)
)

func init() {
	RegisterSpecFactory(NewScopeSpec, SpecFormatScope)
}

func RegisterSpecFactory(sf SpecFactory, formats ...string) {
	for _, format := range formats {
		if _, ok := sfMap[format]; ok {
			log.Panicln("already registered format:" + format)
		}
		sfMap[format] = sf
	}
}

func SpecFormats() []string {
	l := make([]string, 0, len(sfMap))
	for k := range sfMap {
		l = append(l, k)
	}
	sort.Strings(l)
	return l
}

func NewSpec(format string, b []byte) (*Spec, error) {
	if sf, ok := sfMap[format]; ok {
		return sf(b)
	}
	return nil, ErrorCodeInvalidSpec.Errorf("not supported format:%s", format)
}

func MustNewSpec(format string, b []byte) *Spec {
	s, err := NewSpec(format, b)
	if err != nil {
		log.Panicf("fail to NewSpec err:%v", err)
	}
	return s
}

func NewScopeSpec(b []byte) (*Spec, error) {
	s := &Spec{}
	if err := json.Unmarshal(b, s); err != nil {
		if errors.CodeOf(err) == ErrorCodeInvalidSpec {
			return nil, err
		}
		return nil, ErrorCodeInvalidSpec.Wrapf(err, "fail to Unmarshal err:%s", err.Error())
	}
	return s, nil
}
