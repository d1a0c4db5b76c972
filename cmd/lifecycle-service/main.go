package main

import (
	"fmt"
	"os"

	"github.com/greenbasket/engine/services/lifecycle"
)

func main() {
	if err := lifecycle.Command().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
