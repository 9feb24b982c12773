/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/sprout/cmd"
	"github.com/humaidq/sprout/logging"
)

func main() {
	app := &cli.Command{
		Name:  "sprout",
		Usage: "Sprout - pediatric growth assessment",
		Commands: []*cli.Command{
			cmd.CmdStart,
			cmd.CmdMigrate,
			cmd.CmdAssess,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logging.Logger(logging.SourceApp).Fatal(err)
	}
}
