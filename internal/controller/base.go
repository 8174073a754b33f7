package controller

import (
	"skillnest_backend/internal/service"
	"skillnest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentActor 鉴权中间件之后调用，未登录时已写入 401
func currentActor(ctx *gin.Context) (service.Actor, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return service.Actor{}, false
	}
	return service.ActorFromClaims(claims), true
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParamUint(ctx, name)
	if !ok {
		util.BadRequest(ctx, "Invalid "+name)
	}
	return id, ok
}
