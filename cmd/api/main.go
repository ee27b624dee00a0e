package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"nftlend-backend/internal/adapter/accessctl"
	custodyAdapter "nftlend-backend/internal/adapter/custody"
	httpadp "nftlend-backend/internal/adapter/http"
	ledgerAdapter "nftlend-backend/internal/adapter/ledger"
	"nftlend-backend/internal/adapter/middleware"
	"nftlend-backend/internal/adapter/repository/mysql"
	"nftlend-backend/internal/config"
	bundleDomain "nftlend-backend/internal/domain/bundle"
	eventDomain "nftlend-backend/internal/domain/event"
	"nftlend-backend/internal/infrastructure/cache"
	"nftlend-backend/internal/infrastructure/db"
	bundleUC "nftlend-backend/internal/usecase/bundle"
	loanUC "nftlend-backend/internal/usecase/loan"
	rewardsUC "nftlend-backend/internal/usecase/rewards"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	if err := gdb.AutoMigrate(
		&bundleDomain.Bundle{},
		&bundleDomain.BundleAsset{},
		&eventDomain.Record{},
		&ledgerAdapter.Account{},
		&custodyAdapter.RegistryAsset{},
		&custodyAdapter.AllowedCollection{},
	); err != nil {
		log.Fatal(err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	gate := accessctl.NewStaticGate(cfg.OwnerAddress, cfg.AdminAddresses)
	uow := mysql.NewGormUoW(gdb, cfg.EngineAddress)
	bundleRepo := mysql.NewBundleRepository(gdb)

	bundles := bundleUC.NewUsecase(bundleRepo, uow, bundleUC.Bounds{
		MinPeriodSeconds: cfg.MinPeriodSecs,
		MaxPeriodSeconds: cfg.MaxPeriodSecs,
	})
	loans := loanUC.NewUsecase(uow)
	rewards := rewardsUC.NewUsecase(uow, gate)

	h := httpadp.NewHandler()
	bh := httpadp.NewBundleHandler(bundles)
	lh := httpadp.NewLoanHandler(loans)
	rh := httpadp.NewRewardsHandler(rewards)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger(), echomw.Recover())
	e.Validator = httpadp.NewValidator()

	idemp := middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	// routes
	e.GET("/health", h.Health)
	e.GET("/bundles/:bundle_id", bh.GetBundle)
	e.GET("/collections/:collection/assets/:asset_id/bundle", bh.ResolveAsset)
	e.GET("/collections/:collection/assets/:asset_id/access", bh.HasAccess)

	e.POST("/bundles", bh.CreateBundle, idemp)
	e.POST("/bundles/:bundle_id/activate", lh.ActivateLoan, idemp)
	e.POST("/bundles/:bundle_id/reclaim", lh.ReclaimBundle, idemp)
	e.POST("/bundles/:bundle_id/claim", rh.ClaimRewards, idemp)
	e.POST("/rewards/credit", rh.CreditRewards, idemp)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
