// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the playerauth CLI.
package main

import (
	"playerauth/cli/cmd"
)

func main() {
	cmd.Execute()
}
