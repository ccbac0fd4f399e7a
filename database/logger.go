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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/icon-project/btp2/common/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DefaultSlowThreshold = time.Millisecond * 200
)

var gormLogLevels = map[logger.LogLevel]log.Level{
	logger.Silent: log.PanicLevel,
	logger.Error:  log.ErrorLevel,
	logger.Warn:   log.WarnLevel,
	logger.Info:   log.InfoLevel,
}

// statementLogger dumps every statement at trace level with elapsed time and
// affected rows. Failed statements are raised to error, slow ones to warn.
type statementLogger struct {
	l             log.Logger
	slowThreshold time.Duration
}

func newStatementLogger(l log.Logger, slowThreshold time.Duration) *statementLogger {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowThreshold
	}
	return &statementLogger{l: l, slowThreshold: slowThreshold}
}

func (l *statementLogger) LogMode(level logger.LogLevel) logger.Interface {
	if lv, ok := gormLogLevels[level]; ok {
		l.l.SetLevel(lv)
	}
	return l
}

func (l *statementLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.l.Infof(msg, data...)
}

func (l *statementLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.l.Warnf(msg, data...)
}

func (l *statementLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.l.Errorf(msg, data...)
}

func (l *statementLogger) levelOf(elapsed time.Duration, err error) (log.Level, string) {
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return log.ErrorLevel, fmt.Sprintf("fail to execute err:%s ", err.Error())
	case elapsed > l.slowThreshold:
		return log.WarnLevel, fmt.Sprintf("slow statement threshold:%v ", l.slowThreshold)
	default:
		return log.TraceLevel, ""
	}
}

func (l *statementLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	lv, prefix := l.levelOf(elapsed, err)
	if l.l.GetLevel() < lv {
		return
	}
	sql, rows := fc()
	l.l.Logf(lv, "%selapsed:%.3fms rows:%d sql:%s", prefix, float64(elapsed.Nanoseconds())/1e6, rows, sql)
}
