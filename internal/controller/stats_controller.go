package controller

import (
	"quizgen_backend/internal/service"
	"quizgen_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	StatsService *service.StatsService
}

func NewStatsController(statsService *service.StatsService) *StatsController {
	return &StatsController{StatsService: statsService}
}

// GetStats godoc
// @Summary 题库与作答统计 (Admin only)
// @Tags 统计
// @Produce  json
// @Security ApiKeyAuth
// @Param   minScore query int false "统计不低于该分数的结果数" default(0)
// @Success 200 {object} util.Response{data=service.Stats} "成功"
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/admin/stats [get]
func (c *StatsController) GetStats(ctx *gin.Context) {
	minScore, err := strconv.Atoi(ctx.DefaultQuery("minScore", "0"))
	if err != nil || minScore < 0 {
		util.BadRequest(ctx, "minScore must be a non-negative integer")
		return
	}

	stats, err := c.StatsService.Collect(minScore)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
