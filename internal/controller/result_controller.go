package controller

import (
	"quizgen_backend/internal/service"
	"quizgen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	ResultService *service.ResultService
}

func NewResultController(resultService *service.ResultService) *ResultController {
	return &ResultController{ResultService: resultService}
}

// GetMyResults godoc
// @Summary 获取我的作答记录
// @Description 当前用户的全部作答结果，最新的在前
// @Tags 作答结果
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.QuizResult} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/results/me [get]
func (c *ResultController) GetMyResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.ResultService.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// GetResult godoc
// @Summary 获取作答结果详情
// @Description 仅本人与管理员可见
// @Tags 作答结果
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "结果ID"
// @Success 200 {object} util.Response{data=model.QuizResult} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "结果不存在"
// @Router /api/results/{id} [get]
func (c *ResultController) GetResult(ctx *gin.Context) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "Invalid result ID")
		return
	}

	res, err := c.ResultService.Get(id, util.GetUserFromContext(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
