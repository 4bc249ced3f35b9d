package main

import (
	"os"

	"find-text/app"
)

func main() {
	os.Exit(app.Run())
}
