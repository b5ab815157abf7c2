package main

import (
	"fmt"
	"os"

	"github.com/Skotchmaster/storefront/pkg/apiclient"
)

func main() {
	root, closeApp := newRootCmd(openApp)
	err := root.Execute()
	if cerr := closeApp(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, apiclient.Display(err))
		os.Exit(1)
	}
}
