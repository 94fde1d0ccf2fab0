package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forkful/database"
	"forkful/handlers"
	"forkful/routes"
	"forkful/websocket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("Starting Forkful backend server...")

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	mongoURI := os.Getenv("MONGODB_URI")
	if jwtSecret == "" || mongoURI == "" {
		log.Fatal("JWT_SECRET and MONGODB_URI must be set")
	}

	log.Println("Connecting to MongoDB...")

	client, dbErr := database.Connect(mongoURI)
	for attempt := 2; dbErr != nil && attempt <= 3; attempt++ {
		log.Printf("MongoDB connection failed: %v (retrying, attempt %d)", dbErr, attempt)
		time.Sleep(2 * time.Second)
		client, dbErr = database.Connect(mongoURI)
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB: ", dbErr)
	}
	defer database.Disconnect(client)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	hub := websocket.NewHub()
	go hub.Run()

	h := handlers.New(client.Database(database.Name), hub, handlers.Config{
		JWTSecret:       jwtSecret,
		CloudinaryURL:   os.Getenv("CLOUDINARY_URL"),
		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
	})

	router := routes.Setup(h, hub, jwtSecret)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	log.Println("Server stopped gracefully")
}
