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

package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository[T any] interface {
	Save(v *T) error
	Upsert(v *T) error
	Delete(query interface{}, conds ...interface{}) error
	Exists(query interface{}, conds ...interface{}) (bool, error)
	Count(query interface{}, conds ...interface{}) (int64, error)
	FindOne(query interface{}, conds ...interface{}) (*T, error)
	Find(query interface{}, conds ...interface{}) ([]T, error)
	FindWithOrder(order string, query interface{}, conds ...interface{}) ([]T, error)
	Pluck(column, order string, dest interface{}) error
}

type DefaultRepository[T any] struct {
	db   *gorm.DB
	name string
}

func NewDefaultRepository[T any](db *gorm.DB, name string) (*DefaultRepository[T], error) {
	if err := db.Table(name).AutoMigrate(new(T)); err != nil {
		return nil, err
	}
	return &DefaultRepository[T]{
		db:   db,
		name: name,
	}, nil
}

func (r *DefaultRepository[T]) table() *gorm.DB {
	if len(r.name) > 0 {
		return r.db.Table(r.name)
	} else {
		return r.db
	}
}

// Save inserts v, or updates the record having the same primary key.
func (r *DefaultRepository[T]) Save(v *T) error {
	return r.table().Save(v).Error
}

// Upsert inserts v in a single statement, or overwrites every column of the
// conflicting record except the primary key and the creation time.
func (r *DefaultRepository[T]) Upsert(v *T) error {
	return r.table().Clauses(clause.OnConflict{UpdateAll: true}).Create(v).Error
}

func (r *DefaultRepository[T]) Delete(query interface{}, conds ...interface{}) error {
	return r.table().Delete(query, conds...).Error
}

func (r *DefaultRepository[T]) Exists(query interface{}, conds ...interface{}) (bool, error) {
	count, err := r.Count(query, conds...)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DefaultRepository[T]) where(query interface{}, conds ...interface{}) *gorm.DB {
	ret := r.table().Model(new(T))
	if query != nil {
		ret = ret.Where(query, conds...)
	}
	return ret
}

func (r *DefaultRepository[T]) Count(query interface{}, conds ...interface{}) (int64, error) {
	var count int64
	if err := r.where(query, conds...).Count(&count).Error; err != nil {
		return -1, err
	}
	return count, nil
}

func filterError(err error) error {
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	return nil
}

// FindOne returns nil without error if there is no matched record.
func (r *DefaultRepository[T]) FindOne(query interface{}, conds ...interface{}) (*T, error) {
	v := new(T)
	err := r.where(query, conds...).First(v).Error
	if err != nil {
		return nil, filterError(err)
	}
	return v, nil
}

func (r *DefaultRepository[T]) Find(query interface{}, conds ...interface{}) ([]T, error) {
	var l []T
	err := r.where(query, conds...).Find(&l).Error
	if err != nil {
		return nil, filterError(err)
	}
	return l, err
}

func (r *DefaultRepository[T]) FindWithOrder(order string, query interface{}, conds ...interface{}) ([]T, error) {
	var l []T
	err := r.where(query, conds...).Order(order).Find(&l).Error
	if err != nil {
		return nil, filterError(err)
	}
	return l, err
}

// Pluck reads a single column of every record into dest, a pointer to slice.
func (r *DefaultRepository[T]) Pluck(column, order string, dest interface{}) error {
	ret := r.where(nil)
	if len(order) > 0 {
		ret = ret.Order(order)
	}
	return ret.Pluck(column, dest).Error
}
