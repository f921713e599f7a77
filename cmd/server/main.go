package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/elcatools/elca2ifc/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, relying on the process environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := server.NewServer()
	r := srv.SetupRouter()

	log.Printf("elca2ifc server listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
