package route

import (
	"mealprep/backend/api/handler"
	"mealprep/backend/api/middleware"

	"github.com/gin-gonic/gin"
)

func SetApiRouter(route *gin.Engine) {
	apiRouter := route.Group("/api")
	apiRouter.Use(middleware.LangMiddleware())
	apiRouter.Use(middleware.GlobalAPIRateLimit())
	{
		apiRouter.GET("/status", handler.GetStatus)

		authRoutes := apiRouter.Group("/auth")
		{
			authRoutes.POST("/register", middleware.CriticalRateLimit(), handler.Register)
			authRoutes.POST("/login", middleware.CriticalRateLimit(), handler.Login)
			authRoutes.POST("/refresh", middleware.CriticalRateLimit(), handler.RefreshToken)
			authRoutes.POST("/logout", handler.Logout)
		}

		userRoute := apiRouter.Group("/user")
		userRoute.Use(middleware.JWTAuth(), middleware.UserAuth())
		{
			userRoute.GET("/self", handler.GetSelf)
			userRoute.PUT("/self", handler.UpdateSelf)

			adminRoute := userRoute.Group("/")
			adminRoute.Use(middleware.AdminAuth())
			{
				adminRoute.GET("/", handler.GetAllUsers)
				adminRoute.DELETE("/:id", handler.DeleteUser)
			}
		}

		planRoute := apiRouter.Group("/")
		planRoute.Use(middleware.JWTAuth(), middleware.UserAuth())
		{
			planRoute.GET("/components", handler.GetComponents)
			planRoute.POST("/components", handler.CreateComponent)
			planRoute.PUT("/components/:id", handler.UpdateComponent)
			planRoute.DELETE("/components/:id", handler.DeleteComponent)

			planRoute.GET("/week", handler.GetWeek)
			planRoute.POST("/week/flush", handler.FlushPlan)

			planRoute.PUT("/slots/:id", handler.UpdateSlot)
			planRoute.POST("/slots/:id/assign", handler.AssignComponent)
			planRoute.POST("/slots/:id/move", handler.MoveComponent)
			planRoute.POST("/slots/:id/remove", handler.RemoveComponent)
			planRoute.POST("/slots/:id/favorite-drop", handler.DropFavorite)
			planRoute.POST("/slots/:id/toppings", handler.AddTopping)
			planRoute.DELETE("/slots/:id/toppings/:index", handler.RemoveTopping)
			planRoute.POST("/slots/:id/clear", handler.ClearSlot)

			planRoute.GET("/favorites", handler.GetFavorites)
			planRoute.POST("/favorites", handler.SaveFavorite)
			planRoute.DELETE("/favorites/:id", handler.DeleteFavorite)

			planRoute.GET("/shopping", handler.GetShoppingList)
			planRoute.POST("/shopping", handler.CreateShoppingItem)
			planRoute.PUT("/shopping/:id", handler.UpdateShoppingItem)
			planRoute.DELETE("/shopping/:id", handler.DeleteShoppingItem)
			planRoute.POST("/shopping/clear-checked", handler.ClearCheckedShoppingItems)

			planRoute.GET("/templates/export", handler.ExportTemplate)
			planRoute.POST("/templates/import", handler.ImportTemplate)

			planRoute.GET("/plan_logs", handler.GetPlanLogs)
		}
	}
}
