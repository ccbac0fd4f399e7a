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
	"path/filepath"
	"testing"

	"github.com/icon-project/btp2/common/log"
	"github.com/stretchr/testify/assert"

	"github.com/icon-project/abi-scope/contract"
	"github.com/icon-project/abi-scope/database"
)

const (
	balanceABI = `[{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}]`
)

func newTestStore(t *testing.T) *ContractStore {
	db, err := database.OpenDatabase(database.Config{
		Driver: database.DriverSQLite,
		DBName: filepath.Join(t.TempDir(), "registry.db"),
	}, log.New())
	if err != nil {
		assert.FailNow(t, "fail to OpenDatabase", err)
	}
	st, err := NewContractStore(db)
	if err != nil {
		assert.FailNow(t, "fail to NewContractStore", err)
	}
	return st
}

func Test_Registry(t *testing.T) {
	r, err := NewRegistry(1, log.New())
	if err != nil {
		assert.FailNow(t, "fail to NewRegistry", err)
	}
	c, err := r.Register("a", "", []byte(erc20ABI))
	assert.NoError(t, err)
	assert.Equal(t, "a", c.Spec().Name)
	assert.Equal(t, c, r.Get("a"))

	_, err = r.Register("b", "", []byte(balanceABI))
	assert.NoError(t, err)
	assert.Nil(t, r.Get("a"), "evicted")
	assert.Equal(t, []string{"b"}, r.Names())

	_, err = r.Register("c", "unknown", []byte(balanceABI))
	assert.True(t, contract.ErrorCodeInvalidSpec.Equals(err), err)
	assert.Nil(t, r.Get("c"))

	assert.True(t, r.Remove("b"))
	assert.False(t, r.Remove("b"))
	assert.Empty(t, r.Names())
}

func Test_RegistryWithStore(t *testing.T) {
	st := newTestStore(t)
	r, err := NewRegistry(1, log.New())
	if err != nil {
		assert.FailNow(t, "fail to NewRegistry", err)
	}
	r.SetStore(st)

	_, err = r.Register("a", "", []byte(erc20ABI))
	assert.NoError(t, err)
	_, err = r.Register("b", "", []byte(balanceABI))
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, r.Names())

	c := r.Get("a")
	if assert.NotNil(t, c, "restored") {
		assert.Equal(t, "70a08231", c.MethodIdentifiers()["balanceOf(address)"])
		assert.Equal(t, "a9059cbb", c.MethodIdentifiers()["transfer(address,uint256)"])
	}

	prev, err := st.Get("b")
	if err != nil || prev == nil {
		assert.FailNow(t, "fail to Get", err)
	}
	_, err = r.Register("b", "", []byte(erc20ABI))
	assert.NoError(t, err)
	rec, err := st.Get("b")
	assert.NoError(t, err)
	if assert.NotNil(t, rec) {
		assert.Equal(t, DefaultSpecFormat, rec.Format)
		assert.Equal(t, erc20ABI, string(rec.Spec))
		assert.True(t, prev.CreatedAt.Equal(rec.CreatedAt), "keep CreatedAt")
	}

	r2, err := NewRegistry(DefaultRegistrySize, log.New())
	assert.NoError(t, err)
	r2.SetStore(st)
	assert.NotNil(t, r2.Get("b"))

	assert.True(t, r2.Remove("a"))
	assert.False(t, r2.Remove("a"))
	assert.Equal(t, []string{"b"}, r2.Names())
	rec, err = st.Get("a")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}
