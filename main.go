package main

import (
	cmd "github.com/streamforms/submission-exporter/cmd/main"
)

func main() {
	cmd.Run()
}
