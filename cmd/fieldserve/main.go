package main

import (
	"fmt"
	"os"

	"github.com/nurpe/fieldserve/internal/auth"
	"github.com/nurpe/fieldserve/internal/config"
	"github.com/nurpe/fieldserve/internal/db"
	"github.com/nurpe/fieldserve/internal/excel"
	httphandler "github.com/nurpe/fieldserve/internal/http"
	"github.com/nurpe/fieldserve/internal/http/middleware"
	"github.com/nurpe/fieldserve/internal/logger"
	"github.com/nurpe/fieldserve/internal/pdf"
	"github.com/nurpe/fieldserve/internal/repository"
	"github.com/nurpe/fieldserve/internal/service"
	"github.com/nurpe/fieldserve/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	estimateRepo := repository.NewEstimateRepository(database)
	ticketRepo := repository.NewTicketRepository(database)
	projectRepo := repository.NewProjectRepository(database)
	catalogRepo := repository.NewCatalogRepository(database)

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator()

	photoBucket, err := storage.NewPhotoBucket(cfg.Storage.Root, cfg.Storage.PublicBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init photo storage")
	}

	estimateService := service.NewEstimateService(estimateRepo, catalogRepo, pdfGenerator, excelGenerator, cfg)
	ticketService := service.NewTicketService(ticketRepo, catalogRepo, photoBucket)
	projectService := service.NewProjectService(projectRepo, catalogRepo)
	catalogService := service.NewCatalogService(catalogRepo)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(estimateService, ticketService, projectService, catalogService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, photoBucket.Root())

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting fieldserve")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
