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

package api

import (
	"sort"

	lru "github.com/hashicorp/golang-lru"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/abi-scope/contract"
	"github.com/icon-project/abi-scope/contract/eth"
)

const (
	DefaultRegistrySize = 128
	DefaultSpecFormat   = eth.SpecFormatABI
)

// Registry keeps codecs of registered contracts, evicting the least recently
// used one when full. With a ContractStore, evicted contracts are restored on
// Get.
type Registry struct {
	c  *lru.Cache
	st *ContractStore
	l  log.Logger
}

func NewRegistry(size int, l log.Logger) (*Registry, error) {
	if size <= 0 {
		size = DefaultRegistrySize
	}
	c, err := lru.NewWithEvict(size, func(key interface{}, value interface{}) {
		l.Debugf("evict contract:%v", key)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fail to lru.New err:%s", err.Error())
	}
	return &Registry{c: c, l: l}, nil
}

// SetStore persists contracts registered afterwards to st.
func (r *Registry) SetStore(st *ContractStore) {
	r.st = st
}

func (r *Registry) newCodec(name, format string, spec []byte) (*eth.Codec, error) {
	s, err := contract.NewSpec(format, spec)
	if err != nil {
		return nil, err
	}
	if len(s.Name) == 0 {
		s.Name = name
	}
	return eth.NewCodec(s, r.l), nil
}

func (r *Registry) Register(name, format string, spec []byte) (*eth.Codec, error) {
	if len(format) == 0 {
		format = DefaultSpecFormat
	}
	c, err := r.newCodec(name, format, spec)
	if err != nil {
		return nil, err
	}
	if r.st != nil {
		if err = r.st.Save(name, format, spec); err != nil {
			return nil, errors.Wrapf(err, "fail to save contract:%s err:%s", name, err.Error())
		}
	}
	r.Add(name, c)
	r.l.Debugf("register contract:%s format:%s functions:%d", name, format, len(c.Spec().Functions))
	return c, nil
}

func (r *Registry) Add(name string, c *eth.Codec) {
	r.c.Add(name, c)
}

func (r *Registry) Get(name string) *eth.Codec {
	if v, ok := r.c.Get(name); ok {
		return v.(*eth.Codec)
	}
	if r.st == nil {
		return nil
	}
	rec, err := r.st.Get(name)
	if err != nil {
		r.l.Warnf("fail to load contract:%s err:%+v", name, err)
		return nil
	}
	if rec == nil {
		return nil
	}
	c, err := r.newCodec(rec.Name, rec.Format, rec.Spec)
	if err != nil {
		r.l.Warnf("fail to restore contract:%s err:%+v", name, err)
		return nil
	}
	r.Add(name, c)
	r.l.Debugf("restore contract:%s", name)
	return c
}

// Remove returns false if the contract was not registered.
func (r *Registry) Remove(name string) bool {
	removed := r.c.Remove(name)
	if r.st != nil {
		rec, err := r.st.Get(name)
		if err != nil {
			r.l.Warnf("fail to load contract:%s err:%+v", name, err)
			return removed
		}
		if rec != nil {
			if err = r.st.Delete(name); err != nil {
				r.l.Warnf("fail to delete contract:%s err:%+v", name, err)
			}
			removed = true
		}
	}
	return removed
}

func (r *Registry) Names() []string {
	if r.st != nil {
		names, err := r.st.Names()
		if err == nil {
			return names
		}
		r.l.Warnf("fail to load names err:%+v", err)
	}
	keys := r.c.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.(string)
	}
	sort.Strings(names)
	return names
}
