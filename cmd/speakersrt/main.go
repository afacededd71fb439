package main

import (
	"context"
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		color.Red("错误: %v", err)
		os.Exit(1)
	}
}
