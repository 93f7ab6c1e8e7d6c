package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	migrateCmd := flag.Bool("migrate", false, "Run database migrations and exit")
	seedDemoCmd := flag.Bool("seed-demo", false, "Run migrations, seed demo expenses, budgets and goals (idempotent) and exit")
	flag.Parse()

	cfg := LoadConfig()
	log := newLogger(cfg.LogLevel, os.Stdout)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrateCmd || *seedDemoCmd {
		if err := runMigrations(cfg.DatabaseURL, log); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Info("Migration completed successfully")
	}
	if *seedDemoCmd {
		db, err := openDB(ctx, cfg, log)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		err = seedDemoData(ctx, db)
		db.Close()
		if err != nil {
			log.Fatalf("Seeding demo data failed: %v", err)
		}
		log.Info("Demo data seeded")
	}
	if *migrateCmd || *seedDemoCmd {
		return
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// run serves HTTP until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, cfg *Config, log *logrus.Logger) error {
	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	var cache *forecastCache
	if cfg.RedisURL != "" {
		client, err := newRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis, continuing without forecast cache")
		} else {
			defer client.Close()
			cache = newForecastCache(client, cfg.ForecastTTL, log)
		}
	}

	app := newApp(newPGStore(db), cache, log)

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(app, cfg.AllowedOrigins),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRouter wires the middleware and routes.
func newRouter(app *App, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(app.log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", app.root)
	r.GET("/health", app.healthCheck)

	r.GET("/predict/:user_id", app.predictNextMonth)
	r.GET("/predict/category-wise/:user_id", app.predictByCategory)

	r.GET("/expenses/:user_id", app.getExpenses)
	r.POST("/expenses/:user_id", app.addExpense)
	r.DELETE("/expenses/:user_id/:expense_id", app.deleteExpense)

	r.GET("/budgets/:user_id", app.getBudgets)
	r.POST("/budgets/:user_id", app.createBudget)
	r.PUT("/budgets/:user_id/:budget_id", app.updateBudget)
	r.DELETE("/budgets/:user_id/:budget_id", app.deleteBudget)

	r.GET("/goals/:user_id", app.getGoals)
	r.POST("/goals/:user_id", app.createGoal)
	r.PUT("/goals/:user_id/:goal_id", app.updateGoal)
	r.DELETE("/goals/:user_id/:goal_id", app.deleteGoal)

	return r
}
