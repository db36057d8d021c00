// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"log"
	"os"

	"github.com/speechscribe/speechscribe/internal/config"
	"github.com/speechscribe/speechscribe/internal/server"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:   "speechscribe",
		Usage:  "Magic-link sign-in and account approval for SpeechScribe",
		Flags:  config.Flags(),
		Action: server.Run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
