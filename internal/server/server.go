// Package server exposes the study, validation report, and sweep results over
// a local JSON API for the plotting front end. The study file is re-read on
// every request so it can be edited while the server runs.
package server

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ntefft/dt-trends/pkg/estimator"
	"github.com/ntefft/dt-trends/pkg/study"
	"github.com/ntefft/dt-trends/pkg/sweep"
	"github.com/ntefft/dt-trends/pkg/validation"
)

// Server is the local results API for interactive exploration.
type Server struct {
	projectPath string
	port        int
}

// New creates a server for the given project directory.
func New(projectPath string, port int) *Server {
	return &Server{
		projectPath: projectPath,
		port:        port,
	}
}

// Start launches the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "dt-trends results API",
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
	}))

	app.Get("/api/health", s.handleHealth)
	app.Get("/api/study", s.handleStudy)
	app.Get("/api/validation", s.handleValidation)
	app.Get("/api/sweep", s.handleSweep)
	app.Get("/api/estimate", s.handleEstimate)

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("dt-trends results API starting on http://localhost%s", addr)
	log.Printf("Study: %s", s.projectPath)

	return app.Listen(addr)
}

func (s *Server) load() (*study.Study, *validation.Report, error) {
	st, err := study.LoadProject(s.projectPath)
	if err != nil {
		return nil, nil, err
	}
	return st, validation.ValidateStudy(st), nil
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "dt-trends",
	})
}

func (s *Server) handleStudy(c *fiber.Ctx) error {
	st, _, err := s.load()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(st)
}

func (s *Server) handleValidation(c *fiber.Ctx) error {
	_, report, err := s.load()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(report)
}

func (s *Server) handleSweep(c *fiber.Ctx) error {
	st, report, err := s.load()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !report.Valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"validation": report,
		})
	}

	results, sweepReport := sweep.Run(st, baselines(st))
	report.Merge(sweepReport)

	return c.JSON(fiber.Map{
		"study":      st.Title,
		"results":    results,
		"validation": report,
	})
}

// handleEstimate evaluates a single reference scenario at one mixing level:
// GET /api/estimate?ref=2017&mix=16
func (s *Server) handleEstimate(c *fiber.Ctx) error {
	st, report, err := s.load()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !report.Valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"validation": report,
		})
	}

	ref := st.ReferenceByName(c.Query("ref"))
	if ref == nil {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("no reference scenario named %q", c.Query("ref")))
	}
	mix := c.QueryFloat("mix", 0)

	res, err := estimator.Estimate(estimator.Scenario{
		DrinkingSharePct:      ref.SurveyPrevalencePct,
		OtherImpairedSharePct: ref.OtherImpairedPct,
		ExcessMixingPct:       mix,
		RelativeRisk:          ref.RelativeRisk,
		EvasionProbability:    ref.EvasionProbability,
	}, baselines(st))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"scenario": ref.Name,
			"mix_pct":  mix,
			"error":    err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"scenario": ref.Name,
		"mix_pct":  mix,
		"result":   res,
	})
}

// baselines resolves the study's constants the same way the CLI does,
// environment overrides included, so `dttrends sweep` and GET /api/sweep
// never disagree.
func baselines(st *study.Study) estimator.Baselines {
	return estimator.Baselines{
		TotalDrivers:     st.Baselines.TotalDrivers,
		CrashRisk:        st.Baselines.CrashRisk,
		ReferenceEvasion: st.Baselines.ReferenceEvasion,
	}.WithEnvOverrides()
}
