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
	"context"
	"io"
	"os"

	"github.com/icon-project/btp2/common/cli"
	"github.com/icon-project/btp2/common/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/icon-project/abi-scope/api"
)

func NewMonitorCommand(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	rootCmd, rootVc := cli.NewCommand(parentCmd, parentVc, "monitor", "Monitor cli")
	var (
		c api.Client
	)
	rootCmd.PersistentPreRunE = ClientPersistentPreRunE(rootVc, &c)
	AddClientRequiredFlags(rootCmd)
	cli.BindPFlags(rootVc, rootCmd.PersistentFlags())

	bridgeCmd := &cobra.Command{
		Use:   "bridge",
		Short: "Send codec requests over a bridge session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ReadJsonOrFile(cmd.Flag("raw").Value.String())
			if err != nil {
				return err
			}
			var reqs []*api.BridgeRequest
			if err = api.UnmarshalBody(io.NopCloser(bytes.NewReader(b)), &reqs); err != nil {
				return errors.Wrapf(err, "fail to unmarshal requests err:%s", err.Error())
			}
			if len(reqs) == 0 {
				return errors.New("require request at least one")
			}
			ctx, cancel := context.WithCancel(context.Background())
			cli.OnInterrupt(cancel)
			return c.Bridge(ctx, reqs, func(resp *api.BridgeResponse) error {
				return cli.JsonPrettyPrintln(os.Stdout, resp)
			})
		},
	}
	rootCmd.AddCommand(bridgeCmd)
	bridgeFlags := bridgeCmd.Flags()
	bridgeFlags.String("raw", "", "json array of requests, raw json file or json-string")
	cli.MarkAnnotationRequired(bridgeFlags, "raw")
	return rootCmd, rootVc
}
