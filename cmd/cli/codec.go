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

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/icon-project/btp2/common/cli"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/icon-project/abi-scope/api"
	"github.com/icon-project/abi-scope/contract"
	"github.com/icon-project/abi-scope/contract/eth"
)

// ReadJsonOrFile returns s itself if it looks like a json value, otherwise
// the content of the file named s.
func ReadJsonOrFile(s string) ([]byte, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return []byte(trimmed), nil
	}
	return os.ReadFile(s)
}

func NewCodec(specFile, format string, l log.Logger) (*eth.Codec, error) {
	b, err := os.ReadFile(specFile)
	if err != nil {
		return nil, err
	}
	if len(format) == 0 {
		format = api.DefaultSpecFormat
	}
	s, err := contract.NewSpec(format, b)
	if err != nil {
		return nil, err
	}
	return eth.NewCodec(s, l), nil
}

// ParamsOf merges '--raw' params with '--param' flags, the latter taking
// precedence.
func ParamsOf(fs *pflag.FlagSet) (contract.Params, error) {
	params := make(contract.Params)
	if raw, _ := fs.GetString("raw"); len(raw) > 0 {
		b, err := ReadJsonOrFile(raw)
		if err != nil {
			return nil, err
		}
		if err = api.UnmarshalBody(io.NopCloser(bytes.NewReader(b)), &params); err != nil {
			return nil, errors.Wrapf(err, "fail to unmarshal params err:%s", err.Error())
		}
	}
	m, err := GetStringToInterface(fs, "param")
	if err != nil {
		return nil, err
	}
	for k, v := range m {
		params[k] = v
	}
	return params, nil
}

func NewCodecCommands(parentCmd *cobra.Command) {
	var c *eth.Codec
	persistentPreRunE := func(cmd *cobra.Command, args []string) error {
		l := log.GlobalLogger()
		if lv, err := log.ParseLevel(cmd.Flag("log_level").Value.String()); err != nil {
			return errors.Wrapf(err, "fail to parseLevel log_level err:%s", err.Error())
		} else {
			l.SetLevel(lv)
		}
		var err error
		c, err = NewCodec(cmd.Flag("spec").Value.String(), cmd.Flag("format").Value.String(), l)
		return err
	}
	newCodecCommand := func(use, short string, args cobra.PositionalArgs) *cobra.Command {
		cmd := &cobra.Command{
			Use:               use,
			Short:             short,
			Args:              cli.ArgsWithDefaultErrorFunc(args),
			PersistentPreRunE: persistentPreRunE,
		}
		fs := cmd.Flags()
		fs.String("spec", "", "contract spec file")
		fs.String("format", api.DefaultSpecFormat, "contract spec format ("+strings.Join(contract.SpecFormats(), ",")+")")
		fs.String("log_level", "info", "Global log level (trace,debug,info,warn,error,fatal,panic)")
		cli.MarkAnnotationRequired(fs, "spec")
		parentCmd.AddCommand(cmd)
		return cmd
	}
	addFunctionFlags := func(cmd *cobra.Command) {
		fs := cmd.Flags()
		fs.String("signature", "", "function signature to select one of overloaded functions")
	}
	addParamFlags := func(cmd *cobra.Command) {
		fs := cmd.Flags()
		fs.StringToString("param", nil, "key=value, Function parameters, will overwrite '--raw'")
		fs.String("raw", "", "Function parameters using raw json file or json-string")
	}

	encodeCmd := newCodecCommand("encode FUNCTION", "Encode function parameters", cobra.ExactArgs(1))
	addFunctionFlags(encodeCmd)
	addParamFlags(encodeCmd)
	encodeCmd.RunE = func(cmd *cobra.Command, args []string) error {
		params, err := ParamsOf(cmd.Flags())
		if err != nil {
			return err
		}
		fn, tokens, err := c.Encode(args[0], cmd.Flag("signature").Value.String(), params)
		if err != nil {
			return err
		}
		return cli.JsonPrettyPrintln(os.Stdout, &api.EncodeResponse{
			Function: fn.Signature(),
			Selector: hex.EncodeToString(fn.Selector()),
			Values:   eth.NamedValues(fn.Inputs, tokens),
		})
	}

	callDataCmd := newCodecCommand("calldata FUNCTION", "Encode call data of function", cobra.ExactArgs(1))
	addFunctionFlags(callDataCmd)
	addParamFlags(callDataCmd)
	callDataCmd.RunE = func(cmd *cobra.Command, args []string) error {
		params, err := ParamsOf(cmd.Flags())
		if err != nil {
			return err
		}
		data, err := c.CallData(args[0], cmd.Flag("signature").Value.String(), params)
		if err != nil {
			return err
		}
		fmt.Println(data)
		return nil
	}

	decodeCmd := newCodecCommand("decode FUNCTION DATA", "Decode returned data of function", cobra.ExactArgs(2))
	addFunctionFlags(decodeCmd)
	decodeCmd.RunE = func(cmd *cobra.Command, args []string) error {
		b, err := eth.DecodeHex(args[1])
		if err != nil {
			return err
		}
		fn, tokens, err := c.Decode(args[0], cmd.Flag("signature").Value.String(), b)
		if err != nil {
			return err
		}
		return cli.JsonPrettyPrintln(os.Stdout, &api.DecodeResponse{
			Function: fn.Signature(),
			Values:   eth.NamedValues(fn.Outputs, tokens),
		})
	}

	decodeCallDataCmd := newCodecCommand("decodeCallData DATA", "Decode call data", cobra.ExactArgs(1))
	decodeCallDataCmd.RunE = func(cmd *cobra.Command, args []string) error {
		b, err := eth.DecodeHex(args[0])
		if err != nil {
			return err
		}
		fn, tokens, err := c.DecodeCallData(b)
		if err != nil {
			return err
		}
		return cli.JsonPrettyPrintln(os.Stdout, &api.DecodeResponse{
			Function: fn.Signature(),
			Values:   eth.NamedValues(fn.Inputs, tokens),
		})
	}

	selectorsCmd := newCodecCommand("selectors", "Print method identifiers", cobra.NoArgs)
	selectorsCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cli.JsonPrettyPrintln(os.Stdout, c.MethodIdentifiers())
	}

	constructorCmd := newCodecCommand("constructor [ARGS...]", "Encode constructor arguments", cobra.ArbitraryArgs)
	constructorCmd.RunE = func(cmd *cobra.Command, args []string) error {
		data, err := c.EncodeConstructor(args)
		if err != nil {
			return err
		}
		fmt.Println(data)
		return nil
	}
}
