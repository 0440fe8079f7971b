// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/loomrt/loom/pkg/fdready"
	"github.com/loomrt/loom/pkg/interrupt"
	"github.com/spf13/cobra"
)

func (c *command) initWaitCmd() (err error) {
	cmd := &cobra.Command{
		Use:   "wait [path]",
		Short: "Wait for a descriptor to become ready",
		Long: `Wait blocks until the descriptor is ready for reading (or writing,
with --write), the time budget runs out, or the cancellation token is
raised. Without a path it waits on standard input.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(args) > 1 {
				return cmd.Help()
			}
			if err := c.config.BindPFlags(cmd.Flags()); err != nil {
				return err
			}

			dir := fdready.Read
			if c.config.GetBool(optionNameWrite) {
				dir = fdready.Write
			}

			f := os.Stdin
			if len(args) == 1 {
				flag := os.O_RDONLY
				if dir == fdready.Write {
					flag = os.O_WRONLY
				}
				f, err = os.OpenFile(args[0], flag, 0)
				if err != nil {
					return err
				}
				defer f.Close()
			}

			var token *interrupt.Token
			if d := c.config.GetDuration(optionNameCancelAfter); d > 0 {
				token, err = interrupt.NewToken()
				if err != nil {
					return fmt.Errorf("new token: %w", err)
				}
				defer token.Close()

				timer := time.AfterFunc(d, token.Raise)
				defer timer.Stop()
			}

			waiter := fdready.NewWaiter(fdready.Config{Token: token})
			status, err := waiter.Wait(
				int(f.Fd()),
				dir,
				c.config.GetInt64(optionNameTimeout),
				c.config.GetBool(optionNameSocket),
			)
			if errors.Is(err, fdready.ErrInterrupted) {
				cmd.Println("interrupted")
				return nil
			}
			if err != nil {
				return err
			}
			cmd.Println(status)
			return nil
		},
	}

	cmd.Flags().Bool(optionNameWrite, false, "wait for write readiness instead of read readiness")
	cmd.Flags().Int64(optionNameTimeout, -1, "time budget in milliseconds, negative waits indefinitely")
	cmd.Flags().Bool(optionNameSocket, false, "treat the descriptor as a socket")
	cmd.Flags().Duration(optionNameCancelAfter, 0, "raise the cancellation token after this duration, 0 never raises")

	c.root.AddCommand(cmd)
	return nil
}
