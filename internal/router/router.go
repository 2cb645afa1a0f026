package router

import (
	"time"

	"bomtree/internal/config"
	"bomtree/internal/handler"
	"bomtree/internal/middleware"
	"bomtree/internal/repository"
	"bomtree/internal/service"
	"bomtree/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	nodeRepo := repository.NewNodeRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	ownerRepo := repository.NewOwnerRepository(db)
	productTypeRepo := repository.NewProductTypeRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	subtreeSvc := service.NewSubtreeService(nodeRepo)
	bomSvc := service.NewBomService(nodeRepo, rdb, time.Duration(cfg.BomCacheTTLMinutes)*time.Minute)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	compositionSvc := service.NewCompositionService(nodeRepo, materialRepo, ownerRepo, productTypeRepo, subtreeSvc, bomSvc, dispatcher)
	materialSvc := service.NewMaterialService(materialRepo)
	ownerSvc := service.NewOwnerService(ownerRepo)
	productTypeSvc := service.NewProductTypeService(productTypeRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	compositionsH := handler.NewCompositionsHandler(compositionSvc, materialRepo)
	materialsH := handler.NewMaterialsHandler(materialSvc)
	ownersH := handler.NewOwnersHandler(ownerSvc)
	productTypesH := handler.NewProductTypesHandler(productTypeSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		compositions := v1.Group("/compositions")
		{
			compositions.POST("", compositionsH.Create)
			compositions.GET("", compositionsH.ListRoots)
			compositions.GET("/:id/tree", compositionsH.GetTree)
			compositions.POST("/:id/components", compositionsH.AddComponent)
			compositions.PATCH("/:id", compositionsH.Update)
			compositions.DELETE("/:id", compositionsH.Delete)
			compositions.GET("/:id/bom", compositionsH.AggregateBom)
			compositions.GET("/:id/bom/pdf", compositionsH.AggregateBomPDF)
		}

		materials := v1.Group("/materials")
		{
			materials.POST("", materialsH.Create)
			materials.GET("", materialsH.List)
			materials.GET("/:id", materialsH.Get)
		}

		owners := v1.Group("/owners")
		{
			owners.POST("", ownersH.Create)
			owners.GET("", ownersH.List)
		}

		productTypes := v1.Group("/product-types")
		{
			productTypes.POST("", productTypesH.Create)
			productTypes.GET("", productTypesH.List)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
