package controller

import (
	"quizgen_backend/internal/service"
	"quizgen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// BatchQuestionsRequest 批量创建题目
// swagger:model BatchQuestionsRequest
type BatchQuestionsRequest struct {
	Questions []service.QuestionInput `json:"questions" binding:"required,min=1"`
}

// ListQuestions godoc
// @Summary 获取题目列表
// @Description 按标签或难度筛选题目，难度不区分大小写
// @Tags 题库
// @Produce  json
// @Security ApiKeyAuth
// @Param   tag query string false "标签"
// @Param   difficulty query string false "难度"
// @Success 200 {object} util.Response{data=[]model.Question} "成功"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	questions, err := c.QuestionService.List(ctx.Query("tag"), ctx.Query("difficulty"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// GetQuestion godoc
// @Summary 获取题目详情
// @Tags 题库
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "Invalid question ID")
		return
	}

	q, err := c.QuestionService.Get(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// GetTags godoc
// @Summary 获取全部标签
// @Description 返回去重并排序后的标签
// @Tags 题库
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]string} "成功"
// @Router /api/questions/tags [get]
func (c *QuestionController) GetTags(ctx *gin.Context) {
	tags, err := c.QuestionService.Tags()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, tags)
}

// CreateQuestion godoc
// @Summary 创建题目 (Admin only)
// @Tags 题库
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   request body service.QuestionInput true "题目"
// @Success 201 {object} util.Response{data=model.Question} "创建成功"
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionService.Create(in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// CreateQuestions godoc
// @Summary 批量创建题目 (Admin only)
// @Tags 题库
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   request body BatchQuestionsRequest true "题目列表"
// @Success 201 {object} util.Response{data=[]model.Question} "创建成功"
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/questions/batch [post]
func (c *QuestionController) CreateQuestions(ctx *gin.Context) {
	var req BatchQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	qs, err := c.QuestionService.CreateBatch(req.Questions)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, qs)
}

// UpdateQuestion godoc
// @Summary 更新题目 (Admin only)
// @Tags 题库
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   request body service.QuestionInput true "题目"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "Invalid question ID")
		return
	}

	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionService.Update(ctx.Request.Context(), id, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目 (Admin only)
// @Tags 题库
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "Invalid question ID")
		return
	}

	if err := c.QuestionService.Delete(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}
