package main

import (
	"fmt"
	"os"
)

// @title Fitness Program Generator API
// @version 1.0
// @description Step-by-step fitness questionnaire that produces LLM-generated training programs.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
