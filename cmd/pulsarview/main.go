// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/absmach/pulsarview/cmd/pulsarview/cmd"

func main() {
	cmd.Execute()
}
