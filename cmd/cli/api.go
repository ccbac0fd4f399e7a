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
	"encoding/json"
	"os"

	"github.com/icon-project/btp2/common/cli"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/icon-project/abi-scope/api"
)

func GetStringToInterface(fs *pflag.FlagSet, name string) (map[string]interface{}, error) {
	m, err := fs.GetStringToString(name)
	if err != nil {
		return nil, err
	}
	r := make(map[string]interface{})
	for k, v := range m {
		r[k] = v
	}
	return r, nil
}

func ClientPersistentPreRunE(vc *viper.Viper, c *api.Client) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := cli.ValidateFlagsWithViper(vc, cmd.Flags()); err != nil {
			return err
		}
		l := log.GlobalLogger()
		if lv, err := log.ParseLevel(vc.GetString("log_level")); err != nil {
			return errors.Wrapf(err, "fail to parseLevel log_level err:%s", err.Error())
		} else {
			l.SetLevel(lv)
		}
		if lv, err := log.ParseLevel(vc.GetString("console_level")); err != nil {
			return errors.Wrapf(err, "fail to parseLevel console_level err:%s", err.Error())
		} else {
			l.SetConsoleLevel(lv)
		}
		dumpLogLevel, err := log.ParseLevel(vc.GetString("dump_log_level"))
		if err != nil {
			return errors.Wrapf(err, "fail to parseLevel dump_log_level err:%s", err.Error())
		}
		*c = *api.NewClient(vc.GetString("url"), dumpLogLevel, l)
		return nil
	}
}

func AddClientRequiredFlags(c *cobra.Command) {
	pFlags := c.PersistentFlags()
	pFlags.String("url", "http://localhost:8080", "server address")
	pFlags.String("log_level", "debug", "Global log level (trace,debug,info,warn,error,fatal,panic)")
	pFlags.String("console_level", "trace", "Console log level (trace,debug,info,warn,error,fatal,panic)")
	pFlags.String("dump_log_level", "trace", "client dump log level (trace,debug,info)")
}

// SpecRequestOf reads '--spec' file to be registered with the request.
func SpecRequestOf(fs *pflag.FlagSet) (api.SpecRequest, error) {
	req := api.SpecRequest{}
	req.Format, _ = fs.GetString("format")
	if specFile, _ := fs.GetString("spec"); len(specFile) > 0 {
		b, err := os.ReadFile(specFile)
		if err != nil {
			return req, err
		}
		req.Spec = json.RawMessage(b)
	}
	return req, nil
}

func NewApiCommand(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	rootCmd, rootVc := cli.NewCommand(parentCmd, parentVc, "api", "API cli")
	var (
		c api.Client
	)
	rootCmd.PersistentPreRunE = ClientPersistentPreRunE(rootVc, &c)
	AddClientRequiredFlags(rootCmd)
	cli.BindPFlags(rootVc, rootCmd.PersistentFlags())

	rootCmd.AddCommand(&cobra.Command{
		Use:   "contracts",
		Short: "Get list of registered contracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.Contracts()
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "contract NAME",
		Short: "Get method identifiers of contract",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.Contract(args[0])
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "unregister NAME",
		Short: "Unregister contract",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Unregister(args[0]); err != nil {
				return err
			}
			cmd.Println("Operation success")
			return nil
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "openapi NAME",
		Short: "Get OpenAPI document of contract",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.OpenAPI(args[0])
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	})

	addSpecFlags := func(cmd *cobra.Command, required bool) {
		fs := cmd.Flags()
		fs.String("spec", "", "contract spec file")
		fs.String("format", "", "contract spec format, default is "+api.DefaultSpecFormat)
		if required {
			cli.MarkAnnotationRequired(fs, "spec")
		}
	}

	registerCmd := &cobra.Command{
		Use:   "register NAME",
		Short: "Register contract",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			sr, err := SpecRequestOf(cmd.Flags())
			if err != nil {
				return err
			}
			r, err := c.Register(&api.RegisterRequest{Name: args[0], SpecRequest: sr})
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	}
	addSpecFlags(registerCmd, true)
	rootCmd.AddCommand(registerCmd)

	newEncodeCommand := func(use, short string) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use + " CONTRACT FUNCTION",
			Short: short,
			Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(2)),
		}
		addSpecFlags(cmd, false)
		fs := cmd.Flags()
		fs.String("signature", "", "function signature to select one of overloaded functions")
		fs.StringToString("param", nil, "key=value, Function parameters, will overwrite '--raw'")
		fs.String("raw", "", "Function parameters using raw json file or json-string")
		rootCmd.AddCommand(cmd)
		return cmd
	}
	encodeRequestOf := func(cmd *cobra.Command, function string) (*api.EncodeRequest, error) {
		sr, err := SpecRequestOf(cmd.Flags())
		if err != nil {
			return nil, err
		}
		params, err := ParamsOf(cmd.Flags())
		if err != nil {
			return nil, err
		}
		return &api.EncodeRequest{
			SpecRequest: sr,
			Function:    function,
			Signature:   cmd.Flag("signature").Value.String(),
			Params:      params,
		}, nil
	}

	encodeCmd := newEncodeCommand("encode", "Encode function parameters")
	encodeCmd.RunE = func(cmd *cobra.Command, args []string) error {
		req, err := encodeRequestOf(cmd, args[1])
		if err != nil {
			return err
		}
		r, err := c.Encode(args[0], req)
		if err != nil {
			return err
		}
		return cli.JsonPrettyPrintln(os.Stdout, r)
	}
	callDataCmd := newEncodeCommand("calldata", "Encode call data of function")
	callDataCmd.RunE = func(cmd *cobra.Command, args []string) error {
		req, err := encodeRequestOf(cmd, args[1])
		if err != nil {
			return err
		}
		r, err := c.CallData(args[0], req)
		if err != nil {
			return err
		}
		return cli.JsonPrettyPrintln(os.Stdout, r)
	}

	decodeCmd := &cobra.Command{
		Use:   "decode CONTRACT FUNCTION DATA",
		Short: "Decode returned data of function",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			sr, err := SpecRequestOf(cmd.Flags())
			if err != nil {
				return err
			}
			r, err := c.Decode(args[0], &api.DecodeRequest{
				SpecRequest: sr,
				Function:    args[1],
				Signature:   cmd.Flag("signature").Value.String(),
				Data:        args[2],
			})
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	}
	addSpecFlags(decodeCmd, false)
	decodeCmd.Flags().String("signature", "", "function signature to select one of overloaded functions")
	rootCmd.AddCommand(decodeCmd)

	decodeCallDataCmd := &cobra.Command{
		Use:   "decodeCallData CONTRACT DATA",
		Short: "Decode call data",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			sr, err := SpecRequestOf(cmd.Flags())
			if err != nil {
				return err
			}
			r, err := c.DecodeCallData(args[0], &api.DecodeCallDataRequest{SpecRequest: sr, Data: args[1]})
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	}
	addSpecFlags(decodeCallDataCmd, false)
	rootCmd.AddCommand(decodeCallDataCmd)

	constructorCmd := &cobra.Command{
		Use:   "constructor CONTRACT [ARGS...]",
		Short: "Encode constructor arguments",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			sr, err := SpecRequestOf(cmd.Flags())
			if err != nil {
				return err
			}
			r, err := c.Constructor(args[0], &api.ConstructorRequest{SpecRequest: sr, Args: args[1:]})
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	}
	addSpecFlags(constructorCmd, false)
	rootCmd.AddCommand(constructorCmd)
	return rootCmd, rootVc
}
