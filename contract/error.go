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
	"fmt"

	"github.com/icon-project/btp2/common/errors"
)

const (
	ErrorCodeSchemaNotFound errors.Code = errors.CodeGeneral + 1000 + iota
	ErrorCodeAmbiguousOverload
	ErrorCodeMissingParameter
	ErrorCodeInvalidAddress
	ErrorCodeInvalidBool
	ErrorCodeInvalidNumber
	ErrorCodeNumberOutOfRange
	ErrorCodeInvalidBytes
	ErrorCodeUnsupportedType
	ErrorCodeTruncatedData
	ErrorCodeMalformedData
	ErrorCodeInvalidSpec
	ErrorCodeUnexpectedParameter
	ErrorCodeInvalidParameter
)

var (
	errorCodeNames = map[errors.Code]string{
		ErrorCodeSchemaNotFound:    "SchemaNotFound",
		ErrorCodeAmbiguousOverload: "AmbiguousOverload",
		ErrorCodeMissingParameter:  "MissingParameter",
		ErrorCodeInvalidAddress:    "InvalidAddress",
		ErrorCodeInvalidBool:       "InvalidBool",
		ErrorCodeInvalidNumber:     "InvalidNumber",
		ErrorCodeNumberOutOfRange:  "NumberOutOfRange",
		ErrorCodeInvalidBytes:      "InvalidBytes",
		ErrorCodeUnsupportedType:   "UnsupportedType",
		ErrorCodeTruncatedData:     "TruncatedData",
		ErrorCodeMalformedData:     "MalformedData",
		ErrorCodeInvalidSpec:       "InvalidSpec",

		ErrorCodeUnexpectedParameter: "UnexpectedParameter",
		ErrorCodeInvalidParameter:    "InvalidParameter",
	}
)

func ErrorCodeName(c errors.Code) string {
	if n, ok := errorCodeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", c)
}

// IsCodecError reports whether err carries one of the codec error codes.
func IsCodecError(err error) bool {
	_, ok := errorCodeNames[errors.CodeOf(err)]
	return ok
}

// ParamError attaches the parameter being processed to a codec error.
type ParamError struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Raw  string `json:"raw"`
	err  error
}

func NewParamError(name string, t TypeSpec, raw string, err error) *ParamError {
	return &ParamError{
		Name: name,
		Type: t.Canonical(),
		Raw:  raw,
		err:  err,
	}
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid param name:%s type:%s raw:%q err:%s", e.Name, e.Type, e.Raw, e.err.Error())
}

func (e *ParamError) Unwrap() error {
	return e.err
}

func (e *ParamError) ErrorCode() errors.Code {
	return errors.CodeOf(e.err)
}
