package main

import (
	"log"

	"github.com/gridsentry/upswatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
