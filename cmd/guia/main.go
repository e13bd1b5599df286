package main

import (
	"os"

	"horse.fit/guia/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
