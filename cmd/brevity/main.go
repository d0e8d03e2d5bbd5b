package main

import (
	"brevity/cmd/handlers"
	"brevity/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
