package main

import (
	"context"
	"log"

	"github.com/Apurer/go-gin-commerce-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("commerce api: %v", err)
	}
}
