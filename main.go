package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"groupchat/api"
	"groupchat/config"
	"groupchat/middleware"
	"groupchat/models"
	"groupchat/services"
)

func main() {
	// 设置最大处理器数量
	runtime.GOMAXPROCS(runtime.NumCPU())

	// 加载配置
	config.LoadConfig()

	// 连接数据库
	dsn := config.AppConfig.DBConnectionString
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Silent),
		PrepareStmt: true, // 缓存预编译语句
	})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	// 配置数据库连接池
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("获取数据库连接池失败: %v", err)
	}
	sqlDB.SetMaxIdleConns(config.AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(config.AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移数据库表结构
	err = db.AutoMigrate(&models.User{}, &models.Group{}, &models.GroupMember{}, &models.Message{})
	if err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	// 初始化Redis客户端（仅用于用户资料缓存，允许失败）
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
		PoolSize: config.AppConfig.RedisPoolSize,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("警告: Redis连接失败: %v", err)
		log.Println("应用将在没有缓存的情况下运行")
		rdb = nil
	} else {
		log.Println("Redis连接成功")
	}

	// 初始化Kafka事件服务（允许失败）
	eventService, err := services.NewEventService()
	if err != nil {
		log.Printf("警告: Kafka事件服务初始化失败: %v", err)
		log.Println("应用将在没有事件流的情况下运行")
		eventService = nil
	}

	// 创建Gin实例
	if config.AppConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// 配置CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// 使用JWT中间件
	r.Use(middleware.JWTAuth())

	// 注册路由
	api.RegisterRoutes(r, db, rdb, eventService)

	// 启动服务器
	srv := services.StartServer(r, config.AppConfig.Port)

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")

	// 关闭Kafka连接
	if eventService != nil {
		if err := eventService.Close(); err != nil {
			log.Printf("关闭Kafka连接失败: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("服务器强制关闭:", err)
	}

	log.Println("服务器已优雅关闭")
}
