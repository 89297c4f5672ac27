package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"storefront-backend/internal/config"
	"storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/infrastructure/database"
	"storefront-backend/internal/infrastructure/queue"
	"storefront-backend/internal/infrastructure/sequence"
	"storefront-backend/internal/infrastructure/storage"
	"storefront-backend/pkg/logger"

	cartRepo "storefront-backend/internal/domains/cart/repository"
	cartService "storefront-backend/internal/domains/cart/service"
	categoryRepo "storefront-backend/internal/domains/category/repository"
	categoryService "storefront-backend/internal/domains/category/service"
	productJob "storefront-backend/internal/domains/product/job"
	productRepo "storefront-backend/internal/domains/product/repository"
	productService "storefront-backend/internal/domains/product/service"
	promotionJob "storefront-backend/internal/domains/promotion/job"
	promotionRepo "storefront-backend/internal/domains/promotion/repository"
	promotionService "storefront-backend/internal/domains/promotion/service"
	userRepo "storefront-backend/internal/domains/user/repository"
	userService "storefront-backend/internal/domains/user/service"
	wishlistRepo "storefront-backend/internal/domains/wishlist/repository"
	wishlistService "storefront-backend/internal/domains/wishlist/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application.
// Struct này là "root" của dependency graph.
type Container struct {
	// Infrastructure - shared across all domains, singleton
	Config  *config.Config
	Mongo   *database.MongoDB
	Redis   *cache.RedisClient
	Storage *storage.MinIOStorage
	Queue   *queue.Client
	UoW     *database.UnitOfWork

	// Repository layer - stateless, singleton
	ProductRepo          productRepo.ProductRepository
	ProductDetailRepo    productRepo.ProductDetailRepository
	PromotionRepo        promotionRepo.PromotionRepository
	ProductPromotionRepo promotionRepo.ProductPromotionRepository
	UserLimitRepo        promotionRepo.UserLimitRepository
	CategoryRepo         categoryRepo.CategoryRepository
	CategoryGroupRepo    categoryRepo.GroupRepository
	CartRepo             cartRepo.CartRepository
	WishlistRepo         wishlistRepo.WishlistRepository
	UserRepo             userRepo.UserRepository

	// Service layer - business logic, singleton
	ProductService     productService.ProductService
	DetailService      productService.DetailService
	EligibilityService promotionService.EligibilityService
	PromotionAdmin     promotionService.AdminService
	CategoryService    categoryService.CategoryService
	CartService        cartService.CartService
	WishlistService    wishlistService.WishlistService
	UserService        userService.UserService

	// Background job handlers - consumed bởi worker
	CleanupStorageHandler *productJob.CleanupStorageHandler
	PruneExpiredHandler   *promotionJob.PruneExpiredHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer tạo và initialize toàn bộ dependency graph.
//
// Thứ tự initialization:
// 1. Config (không phụ thuộc gì)
// 2. Infrastructure (Mongo, Redis, MinIO, Queue) - phụ thuộc Config
// 3. Repositories - phụ thuộc Infrastructure
// 4. Services - phụ thuộc Repositories
//
// Nếu thứ tự sai → panic (nil pointer dereference)
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE MONGODB
	// ========================================
	log.Println("🗄️  Connecting to MongoDB...")

	db, err := database.NewMongoDB(cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("mongodb health check failed: %w", err)
	}
	c.Mongo = db
	c.UoW = database.NewUnitOfWork(db.Client)
	log.Println("✅ MongoDB connected")

	// Index setup idempotent, chạy mỗi lần boot
	if err := promotionRepo.EnsurePromotionIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to ensure promotion indexes: %w", err)
	}

	// ========================================
	// STEP 3: INITIALIZE REDIS
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisClient := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(context.Background()); err != nil {
		// Sequence generator và queue đều cần redis nên đây là critical
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Redis = redisClient
	log.Println("✅ Redis connected")

	// ========================================
	// STEP 4: INITIALIZE OBJECT STORAGE + QUEUE
	// ========================================
	log.Println("📁 Connecting to MinIO...")

	processor := storage.NewImageProcessor(int64(cfg.Storage.MaxImageBytes), cfg.Storage.MaxImageEdge)
	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO, processor)
	if err != nil {
		return nil, fmt.Errorf("failed to init minio storage: %w", err)
	}
	c.Storage = minioStorage
	log.Println("✅ MinIO connected")

	c.Queue = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	// ========================================
	// STEP 5: INITIALIZE REPOSITORIES
	// ========================================
	c.initRepositories()

	// ========================================
	// STEP 6: INITIALIZE SERVICES
	// ========================================
	c.initServices()

	log.Println("🚀 Container ready")
	return c, nil
}

func (c *Container) initRepositories() {
	c.ProductRepo = productRepo.NewProductRepository(c.Mongo)
	c.ProductDetailRepo = productRepo.NewProductDetailRepository(c.Mongo)
	c.PromotionRepo = promotionRepo.NewPromotionRepository(c.Mongo)
	c.ProductPromotionRepo = promotionRepo.NewProductPromotionRepository(c.Mongo)
	c.UserLimitRepo = promotionRepo.NewUserLimitRepository(c.Mongo)
	c.CategoryRepo = categoryRepo.NewCategoryRepository(c.Mongo)
	c.CategoryGroupRepo = categoryRepo.NewGroupRepository(c.Mongo)
	c.CartRepo = cartRepo.NewCartRepository(c.Mongo)
	c.WishlistRepo = wishlistRepo.NewWishlistRepository(c.Mongo)
	c.UserRepo = userRepo.NewUserRepository(c.Mongo)
}

func (c *Container) initServices() {
	codes := sequence.NewGenerator(c.Redis.Client)

	c.ProductService = productService.NewProductService(
		c.ProductRepo,
		c.ProductDetailRepo,
		c.Storage,
		codes,
		c.Queue,
	)
	c.DetailService = productService.NewDetailService(c.ProductRepo, c.ProductDetailRepo, c.UoW)
	c.EligibilityService = promotionService.NewEligibilityService(
		c.PromotionRepo,
		c.ProductPromotionRepo,
		c.UserLimitRepo,
	)
	c.PromotionAdmin = promotionService.NewAdminService(c.PromotionRepo, c.ProductPromotionRepo)
	c.CategoryService = categoryService.NewCategoryService(c.CategoryRepo, c.CategoryGroupRepo)
	c.CartService = cartService.NewCartService(c.CartRepo, c.ProductDetailRepo)
	c.WishlistService = wishlistService.NewWishlistService(c.WishlistRepo, c.ProductRepo)
	c.UserService = userService.NewUserService(c.UserRepo)

	c.CleanupStorageHandler = productJob.NewCleanupStorageHandler(c.Storage)
	c.PruneExpiredHandler = promotionJob.NewPruneExpiredHandler(c.PromotionRepo)
}

// ========================================
// CLEANUP
// ========================================

// Cleanup đóng mọi connection theo thứ tự ngược với init
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container...")

	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Printf("⚠️  Failed to close queue client: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close redis: %v", err)
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Close(context.Background()); err != nil {
			log.Printf("⚠️  Failed to close mongodb: %v", err)
		}
	}

	log.Println("✅ Cleanup completed")
}
