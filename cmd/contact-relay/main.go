// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/intrinsic-spiders/contact-relay/pkg/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return cli.Execute(args)
}
