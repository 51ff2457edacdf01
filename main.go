package main

import (
	"os"

	"github.com/scan-io-git/cryptoscan/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
