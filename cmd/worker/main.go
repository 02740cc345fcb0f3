package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"recipe-share/internal/config"
	"recipe-share/internal/models"
	"recipe-share/internal/queue/rabbitmq"
	minioclient "recipe-share/internal/storage/minio"
	"recipe-share/internal/worker"
)

const WorkerPoolSize = 5

func main() {
	log.Println("Starting Thumbnail Worker...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize Minio
	log.Println("Connecting to Minio...")
	minioClient, err := minioclient.NewClient(ctx, minioclient.Options{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		PublicURL: cfg.MinioPublicURL,
		Buckets:   []string{cfg.RecipeBucket, cfg.ThumbnailBucket},
	})
	if err != nil {
		log.Fatalf("Failed to connect to Minio: %v", err)
	}

	// Initialize RabbitMQ
	log.Println("Connecting to RabbitMQ...")
	rabbitClient, err := rabbitmq.NewClient(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitClient.Close()

	log.Println("✓ Successfully connected to all services")

	processor := worker.NewProcessor(minioClient, cfg.ThumbnailBucket)

	// Start consuming messages
	msgs, err := rabbitClient.Consume(WorkerPoolSize)
	if err != nil {
		log.Fatalf("Failed to start consuming: %v", err)
	}

	// Create worker pool
	var wg sync.WaitGroup
	taskChan := make(chan models.ImageUploadedEvent, WorkerPoolSize)

	// Start worker goroutines
	for i := 0; i < WorkerPoolSize; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			log.Printf("Worker %d started", workerID)

			for task := range taskChan {
				log.Printf("Worker %d processing %s/%s", workerID, task.BucketName, task.ObjectName)

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				err := processor.ProcessImage(ctx, task.BucketName, task.ObjectName)
				cancel()

				if err != nil {
					log.Printf("Worker %d: failed to process %s: %v", workerID, task.ObjectName, err)
				} else {
					log.Printf("Worker %d: thumbnail ready for %s", workerID, task.ObjectName)
				}
			}

			log.Printf("Worker %d stopped", workerID)
		}(i + 1)
	}

	// Shutdown channel
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Thumbnail Worker is running. Press Ctrl+C to exit.")

	// Message consumer loop
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			var task models.ImageUploadedEvent
			if err := json.Unmarshal(msg.Body, &task); err != nil || task.ObjectName == "" {
				log.Printf("Discarding malformed message: %v", err)
				msg.Nack(false, false) // discard invalid message
				continue
			}

			log.Printf("Received image %s/%s", task.BucketName, task.ObjectName)

			// Send to worker pool
			taskChan <- task

			// Acknowledge message
			msg.Ack(false)
		}
	}()

	// Wait for shutdown signal or a closed delivery channel
	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		rabbitClient.Close()
		<-done
	case <-done:
		log.Println("Delivery channel closed, stopping...")
	}

	// Close task channel to stop workers
	close(taskChan)

	// Wait for all workers to finish
	wg.Wait()

	log.Println("Thumbnail Worker stopped")
}
