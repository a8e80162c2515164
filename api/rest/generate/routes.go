package generate

import (
	"codeberg.org/genius/server/internal/auth"
	"codeberg.org/genius/server/internal/llm"
	"github.com/gin-gonic/gin"
)

// registers the conversation, code and image routes
func RegisterRoutes(router *gin.RouterGroup, chat llm.ChatCompleter, images llm.ImageGenerator, deps Deps) {
	router.POST("/conversation", auth.OptionalAuthMiddleware(), Handler(NewChat(chat), deps))
	router.POST("/code", auth.OptionalAuthMiddleware(), Handler(NewCode(chat), deps))
	router.POST("/image", auth.OptionalAuthMiddleware(), Handler(NewImage(images), deps))
}
