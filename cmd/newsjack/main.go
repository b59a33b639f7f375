package main

import (
	"newsjack/cmd/handlers"
	"newsjack/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
