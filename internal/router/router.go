package router

import (
	"net/http"

	_ "github.com/fekuna/omnipos-marketplace-service/docs"
	accountH "github.com/fekuna/omnipos-marketplace-service/internal/account/handler"
	attributeH "github.com/fekuna/omnipos-marketplace-service/internal/attribute/handler"
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	categoryH "github.com/fekuna/omnipos-marketplace-service/internal/category/handler"
	inventoryH "github.com/fekuna/omnipos-marketplace-service/internal/inventory/handler"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	productH "github.com/fekuna/omnipos-marketplace-service/internal/product/handler"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Account   *accountH.AccountHandler
	Category  *categoryH.CategoryHandler
	Attribute *attributeH.AttributeHandler
	Product   *productH.ProductHandler
	Inventory *inventoryH.InventoryHandler
}

// New builds the gin engine with every route of the service.
func New(h *Handlers, issuer *auth.TokenIssuer, log logger.ZapLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Envelope{Status: response.StatusError, Code: http.StatusNotFound, Message: "route not found"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		response.OK(c, "ok", nil)
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authed := auth.JWTAuth(issuer, log)
	admin := auth.RequireRole(log, model.RoleAdmin)
	seller := auth.RequireRole(log, model.RoleSeller)
	customer := auth.RequireRole(log, model.RoleCustomer)

	api := r.Group("/api")
	{
		account := api.Group("/account")
		{
			account.POST("/register/customer", h.Account.RegisterCustomer)
			account.POST("/register/seller", h.Account.RegisterSeller)
			account.POST("/login", h.Account.Login)
			account.POST("/password-reset", h.Account.RequestPasswordReset)
			account.GET("/password-reset/:token", h.Account.CheckResetToken)
			account.POST("/password-reset/confirm", h.Account.ResetPassword)

			me := account.Group("", authed)
			me.GET("/profile", h.Account.GetProfile)
			me.PUT("/password", h.Account.ChangePassword)

			customers := me.Group("/customer", customer)
			customers.PUT("", h.Account.UpdateCustomer)
			customers.GET("/addresses", h.Account.ListAddresses)
			customers.POST("/addresses", h.Account.CreateAddress)
			customers.PUT("/addresses/:id", h.Account.UpdateAddress)
			customers.DELETE("/addresses/:id", h.Account.DeleteAddress)
			customers.PUT("/addresses/:id/default", h.Account.SetDefaultAddress)

			sellers := me.Group("/seller", seller)
			sellers.PUT("", h.Account.UpdateSeller)
			sellers.PUT("/slug", h.Account.UpdateSellerSlug)
			sellers.PUT("/code", h.Account.UpdateSellerCode)
			sellers.PUT("/contact", h.Account.UpdateSellerContact)
			sellers.PUT("/location", h.Account.UpdateSellerLocation)
		}

		categories := api.Group("/categories")
		{
			categories.GET("/tree", h.Category.ListTree)
			categories.GET("/:id", h.Category.GetCategory)
			categories.GET("/:id/children", h.Category.ListChildren)
			categories.POST("", authed, admin, h.Category.CreateCategory)
			categories.PUT("/:id", authed, admin, h.Category.UpdateCategory)
			categories.DELETE("/:id", authed, admin, h.Category.DeleteCategory)
		}

		attributes := api.Group("/attributes")
		{
			attributes.GET("", h.Attribute.ListAttributes)
			attributes.GET("/:id/values", h.Attribute.ListAttributeValues)
			attributes.POST("", authed, admin, h.Attribute.CreateAttribute)
			attributes.POST("/:id/values", authed, admin, h.Attribute.AddAttributeValue)
		}

		productTypes := api.Group("/product-types")
		{
			productTypes.GET("", h.Attribute.ListProductTypes)
			productTypes.GET("/:id", h.Attribute.GetProductType)
			productTypes.POST("", authed, admin, h.Attribute.CreateProductType)
		}

		products := api.Group("/products")
		{
			products.GET("", h.Product.ListProducts)
			products.GET("/:id", h.Product.GetProduct)
			products.GET("/:id/inventories", h.Inventory.ListByProduct)
			products.POST("", authed, seller, h.Product.CreateProduct)
			products.PUT("/:id", authed, seller, h.Product.UpdateProduct)
			products.DELETE("/:id", authed, seller, h.Product.DeleteProduct)
		}

		inventories := api.Group("/inventories")
		{
			inventories.GET("/:id", h.Inventory.GetInventory)
			inventories.POST("", authed, seller, h.Inventory.CreateInventory)
			inventories.POST("/:id/stock", authed, seller, h.Inventory.AdjustStock)
			inventories.GET("/:id/movements", authed, seller, h.Inventory.ListMovements)
		}
	}

	return r
}

func requestLogger(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("user_id", auth.UserID(c)),
		)
	}
}
