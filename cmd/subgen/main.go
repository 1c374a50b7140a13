package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

func main() {
	cmd, err := newRootCommand().ExecuteC()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		if errors.Is(err, utils.ErrUsage) {
			fmt.Fprintln(os.Stderr, cmd.UsageString())
		}
		os.Exit(1)
	}
}
