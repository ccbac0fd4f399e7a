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
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DriverMysql    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config of the database keeping registered contracts. For sqlite, DBName is
// the path of database file.
type Config struct {
	Driver   string `json:"driver"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Host     string `json:"host,omitempty"`
	Port     uint   `json:"port,omitempty"`
	DBName   string `json:"dbname"`
	// SlowThresholdMs raises statements slower than this to warn level,
	// DefaultSlowThreshold if zero.
	SlowThresholdMs int `json:"slow_threshold_ms,omitempty"`
}

var zeroDefaultDatetimePrecision = 0

func OpenDatabase(cfg Config, l log.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: newStatementLogger(
			l.WithFields(log.Fields{log.FieldKeyModule: "database"}),
			time.Duration(cfg.SlowThresholdMs)*time.Millisecond),
	}
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverMysql:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
		db, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DefaultDatetimePrecision:  &zeroDefaultDatetimePrecision,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), gcfg)
	case DriverPostgres:
		dsn := fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s sslmode=disable",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
	case DriverSQLite:
		dsn := fmt.Sprintf("file:%s", cfg.DBName)
		if len(cfg.User) > 0 {
			auth := fmt.Sprintf("_auth&_auth_user=%s&_auth_pass=%s",
				cfg.User, cfg.Password)
			if !strings.Contains(dsn, "?") {
				auth = "?" + auth
			}
			dsn = dsn + auth
		}
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
	default:
		return nil, errors.Errorf("not support db type:%s", cfg.Driver)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "fail to open database driver:%s err:%s", cfg.Driver, err.Error())
	}
	return db, nil
}
