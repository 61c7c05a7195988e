package router

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/storage"
)

// AccessLog 访问日志中间件，记录每个请求的方法、路径、状态码和耗时
func AccessLog() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		logger.Info().
			Str("method", string(ctx.Method())).
			Str("path", string(ctx.Path())).
			Int("status", ctx.Response.StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("HTTP请求")
	}
}

// RegisterRoutes 注册API路由
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, matchHandler *handler.MatchHandler) {
	api := h.Group("/api/v1")

	api.POST("/resume/upload", func(c context.Context, ctx *app.RequestContext) {
		ownerID := ctx.PostForm("owner_id")
		if ownerID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "owner_id不能为空"})
			return
		}
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := resumeHandler.HandleResumeUpload(c, file, fileHeader.Size, fileHeader.Filename, ownerID)
		if err != nil {
			ctx.JSON(statusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusAccepted, resp)
	})

	api.GET("/resumes", func(c context.Context, ctx *app.RequestContext) {
		ownerID := ctx.Query("owner_id")
		if ownerID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "owner_id不能为空"})
			return
		}
		items, err := resumeHandler.HandleListResumes(c, ownerID)
		if err != nil {
			ctx.JSON(statusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"resumes": items})
	})

	api.POST("/match/resume", func(c context.Context, ctx *app.RequestContext) {
		var req struct {
			ResumeID   string `json:"resume_id"`
			ResumeText string `json:"resume_text"`
			QueryText  string `json:"query_text"`
		}
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		result, err := matchHandler.HandleMatchOne(c, req.ResumeID, req.ResumeText, req.QueryText)
		if err != nil {
			ctx.JSON(statusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	api.POST("/match/search", func(c context.Context, ctx *app.RequestContext) {
		var req struct {
			QueryText string  `json:"query_text"`
			Threshold float64 `json:"threshold"`
		}
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		results, err := matchHandler.HandleSearch(c, req.QueryText, req.Threshold)
		if err != nil {
			ctx.JSON(statusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"results": results})
	})

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}

// statusForError 将业务错误映射为HTTP状态码，不向外泄露内部堆栈
func statusForError(err error) int {
	switch {
	case errors.Is(err, handler.ErrBadRequest), errors.Is(err, matcher.ErrInvalidThreshold):
		return consts.StatusBadRequest
	case errors.Is(err, storage.ErrRecordNotFound):
		return consts.StatusNotFound
	case errors.Is(err, matcher.ErrSearchUnavailable):
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}
