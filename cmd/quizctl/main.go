package main

import (
	"fmt"
	"os"
)

func main() {
	c := &cli{}
	if err := execute(newRootCmd(c), c); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
