package main

import (
	"embed"
	"fmt"
	"os"
)

// フロントのビルド出力を埋め込む
//
//go:embed public
var embedded embed.FS

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
