package controller

import (
	"net/http"
	"quizgen_backend/internal/service"
	"quizgen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
	AIService   *service.AIService
}

func NewQuizController(quizService *service.QuizService, aiService *service.AIService) *QuizController {
	return &QuizController{QuizService: quizService, AIService: aiService}
}

// GenerateQuiz godoc
// @Summary Generate a quiz
// @Description Generate a quiz from topic tags. Falls back to placeholder questions when the AI provider is unavailable.
// @Tags quiz
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   request body service.GenerateRequest true "Tags, difficulty and question count"
// @Success 200 {object} util.Response{data=model.Quiz} "Success"
// @Failure 400 {object} util.Response "Bad Request"
// @Failure 401 {object} util.Response "Unauthorized"
// @Failure 500 {object} util.Response "Internal Server Error"
// @Router /api/quizzes/generate [post]
func (c *QuizController) GenerateQuiz(ctx *gin.Context) {
	var req service.GenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.GenerateQuiz(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, quiz)
}

// CheckAI godoc
// @Summary Check AI provider connectivity (Admin only)
// @Description Send a short prompt to the configured provider and report the outcome
// @Tags quiz
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ConnectionStatus} "Provider reachable"
// @Failure 503 {object} util.Response{data=service.ConnectionStatus} "Provider unavailable"
// @Router /api/quizzes/ai-check [get]
func (c *QuizController) CheckAI(ctx *gin.Context) {
	status := c.AIService.CheckConnection(ctx.Request.Context())
	if !status.OK {
		ctx.JSON(http.StatusServiceUnavailable, util.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "AI provider unavailable",
			Data:    status,
		})
		return
	}
	util.Success(ctx, status)
}

// ListQuizzes godoc
// @Summary List quizzes
// @Description Get all quizzes with their questions, newest first
// @Tags quiz
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Quiz} "Success"
// @Failure 500 {object} util.Response "Internal Server Error"
// @Router /api/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListQuizzes()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// GetQuiz godoc
// @Summary Get a quiz
// @Tags quiz
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=model.Quiz} "Success"
// @Failure 400 {object} util.Response "Bad Request"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "Invalid quiz ID")
		return
	}

	quiz, err := c.QuizService.GetQuiz(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary Delete a quiz (Admin only)
// @Description Delete a quiz. Its questions stay in the catalogue.
// @Tags quiz
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response "Success"
// @Failure 403 {object} util.Response "Forbidden"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "Invalid quiz ID")
		return
	}

	if err := c.QuizService.DeleteQuiz(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

// SubmitAIQuiz godoc
// @Summary Score a client-held quiz
// @Description Score answers against quiz data supplied in the request. The result is not saved. Token optional.
// @Tags quiz
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   request body service.AdHocSubmission true "Answers keyed by 1-based position and the quiz data"
// @Success 200 {object} util.Response{data=model.QuizResult} "Success"
// @Failure 400 {object} util.Response "Bad Request"
// @Router /api/quizzes/ai-submit [post]
func (c *QuizController) SubmitAIQuiz(ctx *gin.Context) {
	var sub service.AdHocSubmission
	if err := ctx.ShouldBindJSON(&sub); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, c.QuizService.EvaluateAdHoc(sub))
}

// SubmitQuiz godoc
// @Summary Submit answers for a stored quiz
// @Description Score answers against the stored quiz and save the result
// @Tags quiz
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Param   request body service.SubmitRequest true "Answers keyed by 1-based position"
// @Success 201 {object} util.Response{data=model.QuizResult} "Created"
// @Failure 400 {object} util.Response "Bad Request"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/quizzes/{id}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "Invalid quiz ID")
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.SubmitQuiz(ctx.Request.Context(), id, util.UserIDFromContext(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// ExportQuiz godoc
// @Summary Export a quiz (Admin only)
// @Description Write the quiz as a JSON document to the configured storage
// @Tags quiz
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=service.ExportResult} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Failure 503 {object} util.Response "Storage unavailable"
// @Router /api/quizzes/{id}/export [post]
func (c *QuizController) ExportQuiz(ctx *gin.Context) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "Invalid quiz ID")
		return
	}

	res, err := c.QuizService.ExportQuiz(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
