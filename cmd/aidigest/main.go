package main

import (
	"os"

	"github.com/deusflow/aidigest/internal/app"
)

func main() {
	os.Exit(app.Execute())
}
