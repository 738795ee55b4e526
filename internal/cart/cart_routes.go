package cart

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	carts := r.Group("/carts/:cartId")
	{
		carts.GET("", handler.Detail)
		carts.GET("/count", handler.Count)
		carts.DELETE("", handler.Clear)
		carts.POST("/items", handler.AddItem)

		items := carts.Group("/items/:itemId")
		{
			items.PATCH("", handler.UpdateQty)
			items.POST("/increment", handler.Increment)
			items.POST("/decrement", handler.Decrement)
			items.DELETE("", handler.RemoveItem)
		}
	}
}
