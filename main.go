package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"timeflow-backend/docs"
	"timeflow-backend/internal/attendance"
	"timeflow-backend/internal/departments"
	"timeflow-backend/internal/employees"
	"timeflow-backend/internal/enrollment"
	"timeflow-backend/internal/face"
	"timeflow-backend/internal/platform/auth"
	"timeflow-backend/internal/platform/db"
	"timeflow-backend/internal/platform/requestid"
	"timeflow-backend/internal/reports"
	"timeflow-backend/internal/verification"
)

func main() {
	path := "config/config.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	// 設定読み込み
	cfg, err := db.LoadConfig(path)
	if err != nil {
		log.Fatalf("[ERROR] config: %v", err)
	}
	log.Printf("[INFO] mode:%s version:%s", cfg.Mode, cfg.Version)

	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		log.Fatalf("[ERROR] timezone: %v", err)
	}

	conn, err := db.Connect(context.Background(), cfg.DB)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	defer conn.Close()
	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	// 顔認識まわり
	codec, err := face.NewCodec(cfg.Face.Dimension)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	faceRuntime := face.NewRuntime(face.NewServiceClient(cfg.Face.ServiceURL, &http.Client{
		Timeout: cfg.Face.ExtractTimeout + 5*time.Second,
	}))

	employeeStore := employees.NewStore(conn)
	repo := enrollment.NewRepository(employeeStore, codec)
	enroller := enrollment.NewManager(repo, faceRuntime, enrollment.Config{
		MaxImageBytes:  cfg.Face.MaxImageBytes,
		MinFaceSize:    cfg.Face.MinFaceSize,
		ExtractTimeout: cfg.Face.ExtractTimeout,
	})
	verifier := verification.NewOrchestrator(repo, faceRuntime,
		face.NewMatcher(cfg.Face.MatchThreshold), cfg.Face.ExtractTimeout)

	attendanceSvc, err := attendance.NewService(attendance.NewStore(conn), verifier, attendance.Config{
		StartTime:     cfg.Attendance.StartTime,
		Location:      loc,
		MaxImageBytes: cfg.Face.MaxImageBytes,
	})
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	issuer := auth.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), requestid.Middleware())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS（開発中のみ必要）
		origins := cfg.Server.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestid.Header},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", requestid.Header},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	docs.SwaggerInfo.Version = cfg.Version
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "face_model_ready": faceRuntime.Ready()})
	})

	pub := r.Group("/api")
	priv := r.Group("/api", auth.RequireAuth(issuer.Secret()))
	admin := r.Group("/api", auth.RequireAuth(issuer.Secret()), auth.RequireRole(auth.RoleAdmin))

	employees.RegisterRoutes(pub, priv, employees.NewService(employeeStore, enroller, issuer, cfg.Face.MaxImageBytes))
	attendance.RegisterRoutes(priv, attendanceSvc)
	departments.RegisterRoutes(pub, admin, departments.NewService(departments.NewStore(conn)))
	reports.RegisterRoutes(admin, reports.NewService(reports.NewStore(conn), attendanceSvc), loc)

	// モデルは先読みしておく（失敗しても初回リクエストで再試行される）
	go func() {
		if err := faceRuntime.Load(context.Background()); err != nil {
			log.Printf("[WARN] face model warm-up failed: %v", err)
			return
		}
		log.Println("[INFO] face model loaded")
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.Certificate.Cert != "" && cfg.Certificate.Key != "" {
			log.Printf("[INFO] listening on https://%s", cfg.Server.Addr)
			err = srv.ListenAndServeTLS(cfg.Certificate.Cert, cfg.Certificate.Key)
		} else {
			log.Printf("[WARN] no certificate configured, listening on http://%s", cfg.Server.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
