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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/icon-project/btp2/common/errors"
	"github.com/labstack/echo/v4"

	"github.com/icon-project/abi-scope/contract"
)

type ErrorResponse struct {
	Code    errors.Code     `json:"code"`
	Name    string          `json:"name,omitempty"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func NewErrorResponse(err error) *ErrorResponse {
	er := &ErrorResponse{
		Code:    errors.CodeOf(err),
		Message: err.Error(),
	}
	if contract.IsCodecError(err) {
		er.Name = contract.ErrorCodeName(er.Code)
	}
	if pe, ok := err.(*contract.ParamError); ok {
		if b, mErr := json.Marshal(pe); mErr == nil {
			er.Data = b
		}
	}
	return er
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("code:%d, message:%s", e.Code, e.Message)
}

func (e *ErrorResponse) ErrorCode() errors.Code {
	return e.Code
}

func (e *ErrorResponse) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// StatusOf maps codec error codes to http status.
func StatusOf(err error) int {
	switch errors.CodeOf(err) {
	case contract.ErrorCodeSchemaNotFound:
		return http.StatusNotFound
	default:
		if contract.IsCodecError(err) {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
}

func HttpErrorHandler(err error, c echo.Context) {
	code := StatusOf(err)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if e, ok := he.Message.(error); ok {
			err = e
		} else {
			err = errors.New(fmt.Sprint(he.Message))
		}
	}
	er := NewErrorResponse(err)
	if !c.Response().Committed {
		if err = c.JSON(code, er); err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}
