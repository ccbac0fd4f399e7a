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
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/icon-project/abi-scope/contract"
	"github.com/icon-project/abi-scope/contract/eth"
)

const (
	TagHexData    = "hexdata"
	TagSpecFormat = "specformat"
)

type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	mustRegisterValidation(v, TagHexData, func(fl validator.FieldLevel) bool {
		_, err := eth.DecodeHex(fl.Field().String())
		return err == nil
	})
	mustRegisterValidation(v, TagSpecFormat, func(fl validator.FieldLevel) bool {
		f := fl.Field().String()
		for _, format := range contract.SpecFormats() {
			if f == format {
				return true
			}
		}
		return false
	})
	return &Validator{v: v}
}

func mustRegisterValidation(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate implements echo.Validator interface.
func (v *Validator) Validate(i interface{}) error {
	if err := v.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
