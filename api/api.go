// Package api exposes dataset metadata over HTTP: the zone output
// schema and partition plans, so downstream loaders can pre-declare
// schemas and file layouts without running a generation.
package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/TFMV/zonegen/pkg/partition"
	"github.com/TFMV/zonegen/pkg/zone"
	"github.com/TFMV/zonegen/version"
)

// Server holds the Fiber app instance
type Server struct {
	app *fiber.App
}

// NewServer initializes a new Fiber instance with best practices
func NewServer() *Server {
	app := fiber.New(fiber.Config{
		IdleTimeout:  10 * time.Second, // Prevents idle connections
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Middleware
	app.Use(recover.New()) // Auto-recovers from panics
	app.Use(logger.New())  // Logs all requests

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "zonegen API",
			"version": version.Version,
			"build":   version.BuildDate,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	app.Get("/schema", handleSchema)
	app.Get("/plan", handlePlan)

	return &Server{app: app}
}

// handleSchema returns the zone output schema as column name/type pairs.
func handleSchema(c *fiber.Ctx) error {
	schema := zone.OutputSchema()
	fields := make([]fiber.Map, 0, schema.NumFields())
	for _, f := range schema.Fields() {
		fields = append(fields, fiber.Map{
			"name":     f.Name,
			"type":     f.Type.String(),
			"nullable": f.Nullable,
		})
	}
	return c.JSON(fiber.Map{
		"table":  "zone",
		"fields": fields,
	})
}

// maxPlanParts bounds the ranges a single plan request may enumerate.
const maxPlanParts = 10_000

// handlePlan returns the partition ranges for ?rows=N&parts=K, or for
// the zone row count of ?scale_factor=S when rows is omitted.
func handlePlan(c *fiber.Ctx) error {
	parts, err := strconv.ParseInt(c.Query("parts", "1"), 10, 32)
	if err != nil || parts < 1 || parts > maxPlanParts {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("parts must be between 1 and %d", maxPlanParts))
	}

	var rows int64
	if q := c.Query("rows"); q != "" {
		rows, err = strconv.ParseInt(q, 10, 64)
		if err != nil || rows < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "rows must be a non-negative integer")
		}
	} else {
		sf, err := strconv.ParseFloat(c.Query("scale_factor", "1"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "scale_factor must be a number")
		}
		rows = zone.RowCountForScale(max(sf, 1.0))
	}

	ranges := make([]fiber.Map, 0, parts)
	for part := int32(1); part <= int32(parts); part++ {
		r := partition.Calculate(rows, int32(parts), part)
		ranges = append(ranges, fiber.Map{
			"part":   part,
			"offset": r.Offset,
			"limit":  r.Limit,
		})
	}

	return c.JSON(fiber.Map{
		"total_rows": rows,
		"parts":      parts,
		"ranges":     ranges,
	})
}

// Start runs the Fiber server and handles graceful shutdown
func (s *Server) Start(port string) error {
	if port == "" {
		port = "3000" // Default port
	}

	// Channel to listen for OS termination signals (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	// Start server in a goroutine
	go func() {
		log.Printf("zonegen API is running on port %s\n", port)
		if err := s.app.Listen(":" + port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-quit
	log.Println("Received shutdown signal, stopping server...")

	// Create a timeout context for the shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		log.Fatalf("Error shutting down: %v", err)
	}

	log.Println("Server shutdown successfully")
	return nil
}

// App returns the underlying Fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
