package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"mealprep/backend/api/middleware"
	"mealprep/backend/api/route"
	"mealprep/backend/common"
	"mealprep/backend/common/i18n"
	"mealprep/backend/library/memstore"
	"mealprep/backend/library/mongostore"
	"mealprep/backend/model"
	"mealprep/backend/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	flag.Parse()
	if *common.PrintVersion {
		println(common.Version)
		os.Exit(0)
	}
	if *common.PrintHelpFlag {
		common.PrintHelp()
		os.Exit(0)
	}
	if err := common.LoadConfig(); err != nil {
		common.FatalLog("failed to load config: ", err)
	}
	common.SetupGinLog()
	if common.I18nDir != "" {
		if err := i18n.Init(common.I18nDir); err != nil {
			common.FatalLog("failed to load messages: ", err)
		}
	}
	common.SysLog("Meal Prep Planner "+common.Version+" started", zap.String("store", common.StoreDriver))
	if os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := common.InitRedisClient(); err != nil {
		common.FatalLog(err)
	}
	if err := model.InitDB(); err != nil {
		common.FatalLog(err)
	}
	defer func() {
		if err := model.CloseDB(); err != nil {
			common.SysError("failed to close database", zap.Error(err))
		}
	}()

	store, closeStore, err := openPlanStore()
	if err != nil {
		common.FatalLog("failed to open plan store: ", err)
	}
	planner := service.NewPlanner(store, common.FlushDelay)
	planner.OnActivity = service.RecordPlanLog
	service.SetPlanner(planner)

	server := gin.New()
	server.Use(gin.Logger(), gin.Recovery())
	server.Use(middleware.CORS())
	server.Use(sessions.Sessions("session", cookie.NewStore([]byte(common.SessionSecret))))
	route.SetRouter(server)

	port := strconv.Itoa(*common.Port)
	httpServer := &http.Server{Addr: ":" + port, Handler: server}
	go func() {
		common.SysLog("Server listening", zap.String("port", port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.FatalLog("failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	common.SysLog("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		common.SysError("http server shutdown", zap.Error(err))
	}
	// pending plans are written back before the store goes away
	if err := planner.Close(ctx); err != nil {
		common.SysError("failed to flush plans", zap.Error(err))
	}
	if err := closeStore(ctx); err != nil {
		common.SysError("failed to close plan store", zap.Error(err))
	}
}

// openPlanStore picks the planner store named by STORE_DRIVER.
func openPlanStore() (service.PlanStore, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	switch common.StoreDriver {
	case common.StoreDriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := mongostore.Connect(ctx, common.MongoURI, common.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case common.StoreDriverMemory:
		common.SysLog("plans are kept in memory and lost on restart")
		return memstore.New(), noop, nil
	default:
		return model.NewPlanStore(), noop, nil
	}
}
