package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"community/api/middleware"
	"community/api/routes"
	"community/config"
	"community/db"
	"community/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	if err := db.ConnectDB(); err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}

	ctx := context.Background()

	// Redis не обязателен: без него кеши и очередь выключены, лента
	// строится напрямую из БД
	if err := services.InitRedis(); err != nil {
		log.Printf("Warning: Redis initialization failed: %v", err)
	} else {
		services.QueueServiceInstance.StartWorkers(ctx)
	}

	// RabbitMQ тоже опционален: без него события уходят напрямую в WebSocket
	if err := services.InitRabbitMQ(); err != nil {
		log.Printf("Warning: RabbitMQ initialization failed: %v", err)
	} else {
		if err := services.StartContentEventConsumer(ctx); err != nil {
			log.Printf("Warning: Failed to start content event consumer: %v", err)
		}
	}

	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.PrometheusMiddleware("community"))

	routes.PublicApi(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := ":8080"
	if config.AppConfig.Backend.Port != 0 {
		addr = fmt.Sprintf(":%d", config.AppConfig.Backend.Port)
	}
	if err := router.Run(addr); err != nil {
		panic(err)
	}
}
