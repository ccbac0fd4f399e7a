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
	"time"

	"github.com/icon-project/btp2/common/errors"
	"gorm.io/gorm"

	"github.com/icon-project/abi-scope/database"
)

const (
	ContractTableName = "contracts"
)

type ContractRecord struct {
	Name      string `gorm:"primaryKey;size:128"`
	Format    string `gorm:"size:32"`
	Spec      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContractStore keeps registered specs, so that contracts evicted from
// Registry or registered before restart are restored.
type ContractStore struct {
	r database.Repository[ContractRecord]
}

func NewContractStore(db *gorm.DB) (*ContractStore, error) {
	r, err := database.NewDefaultRepository[ContractRecord](db, ContractTableName)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to NewDefaultRepository err:%s", err.Error())
	}
	return &ContractStore{r: r}, nil
}

// Save keeps CreatedAt of the contract registered before.
func (s *ContractStore) Save(name, format string, spec []byte) error {
	return s.r.Upsert(&ContractRecord{Name: name, Format: format, Spec: spec})
}

// Get returns nil without error if not found.
func (s *ContractStore) Get(name string) (*ContractRecord, error) {
	return s.r.FindOne(&ContractRecord{Name: name})
}

func (s *ContractStore) Delete(name string) error {
	return s.r.Delete(&ContractRecord{Name: name})
}

func (s *ContractStore) Names() ([]string, error) {
	names := make([]string, 0)
	if err := s.r.Pluck("name", "name", &names); err != nil {
		return nil, err
	}
	return names, nil
}
