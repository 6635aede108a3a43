package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/CCDD2022/mall-system/pkg/app"
	"github.com/CCDD2022/mall-system/pkg/logger"
	"github.com/gin-gonic/gin"

	"github.com/CCDD2022/mall-system/api/middleware"
	v1 "github.com/CCDD2022/mall-system/api/v1"
	"github.com/CCDD2022/mall-system/internal/dao"
	"github.com/CCDD2022/mall-system/internal/dao/mysql"
	redisinit "github.com/CCDD2022/mall-system/internal/dao/redis"
	"github.com/CCDD2022/mall-system/internal/service"
	"github.com/CCDD2022/mall-system/pkg/utils"
)

func main() {
	// 加载配置
	cfg := app.BootstrapApp()

	// 设置Gin模式
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	// 初始化MySQL
	db, err := mysql.InitDB(&cfg.Database.Mysql)
	if err != nil {
		logger.Fatal("MySQL初始化失败", "err", err)
	}

	// 初始化Redis（下单互斥锁 + 商品读缓存）
	rdb, err := redisinit.InitRedis(&cfg.Database.Redis)
	if err != nil {
		logger.Fatal("Redis初始化失败", "err", err)
	}

	// DAO层
	authDao := dao.NewAuthDao(db)
	userDao := dao.NewUserDao(db)
	productDao := dao.NewProductDao(db, rdb, time.Duration(cfg.Checkout.ProductCacheSeconds)*time.Second)
	cartDao := dao.NewCartDao(db)
	orderDao := dao.NewOrderDao(db)
	reviewDao := dao.NewReviewDao(db)
	wishlistDao := dao.NewWishlistDao(db)

	// JWT 工具
	jwtUtil := utils.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Service层
	authService := service.NewAuthService(authDao, jwtUtil)
	userService := service.NewUserService(userDao)
	productService := service.NewProductService(productDao)
	cartService := service.NewCartService(cartDao, productDao)
	orderService := service.NewOrderService(orderDao, cartDao, productDao, rdb,
		time.Duration(cfg.Checkout.LockTTLSeconds)*time.Second)
	reviewService := service.NewReviewService(reviewDao, productDao, orderDao)
	wishlistService := service.NewWishlistService(wishlistDao, cartDao, productDao)

	// 创建处理器实例
	authHandler := v1.NewAuthHandler(authService)
	userHandler := v1.NewUserHandler(userService)
	productHandler := v1.NewProductHandler(productService)
	cartHandler := v1.NewCartHandler(cartService)
	orderHandler := v1.NewOrderHandler(orderService)
	reviewHandler := v1.NewReviewHandler(reviewService)
	wishlistHandler := v1.NewWishlistHandler(wishlistService)

	// 初始化Gin引擎
	r := gin.Default()

	// 全局限流中间件
	r.Use(middleware.GlobalRateLimit(cfg))

	// 健康检查接口
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "mall-system is running",
		})
	})

	// 定义API路由组
	api := r.Group("/api/v1")
	{
		// 公开路由（无需认证）
		authHandler.RegisterRoutes(api)
		productHandler.RegisterPublicRoutes(api)
		reviewHandler.RegisterPublicRoutes(api)

		// 受保护的路由组（需要JWT认证）
		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(jwtUtil))
		{
			userHandler.RegisterRoutes(protected)
			productHandler.RegisterRoutes(protected)
			cartHandler.RegisterRoutes(protected)
			orderHandler.RegisterRoutes(protected)
			reviewHandler.RegisterRoutes(protected)
			wishlistHandler.RegisterRoutes(protected)
		}

		// 下单路由（JWT + 更严格的限流）
		checkout := api.Group("")
		checkout.Use(middleware.JWTAuthMiddleware(jwtUtil))
		checkout.Use(middleware.CheckoutRateLimit(cfg))
		{
			checkout.POST("/orders", orderHandler.CreateOrder)
		}

		// 商家路由（JWT + vendor/admin角色）
		vendor := api.Group("")
		vendor.Use(middleware.JWTAuthMiddleware(jwtUtil))
		vendor.Use(middleware.RequireOrderManager())
		{
			orderHandler.RegisterVendorRoutes(vendor)
		}
	}

	// 启动服务器
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("mall-system starting on " + serverAddr)
	if err := r.Run(serverAddr); err != nil {
		logger.Error("Failed to start server: ", "err", err)
	}
}
