package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/soalgen/soalgen/internal/model"
	"github.com/soalgen/soalgen/internal/pkg/errcode"
	"github.com/soalgen/soalgen/internal/pkg/response"
	"github.com/soalgen/soalgen/internal/service"
)

type GenerateHandler struct {
	generator *service.GenerateService
}

func NewGenerateHandler(generator *service.GenerateService) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

type generateRequest struct {
	QueryText         string   `json:"query_text"`
	NumQuestions      int      `json:"num_questions"`
	UseRAG            *bool    `json:"use_rag"`
	SelectedDocuments []string `json:"selected_documents"`
	TargetOutcome     string   `json:"target_outcome"`
}

type generateResponse struct {
	Result model.GenerationResult `json:"result"`
	Method string                 `json:"method"`
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if req.QueryText == "" {
		response.Error(c, errcode.ErrInvalid, "query_text is required")
		return
	}
	useRAG := true
	if req.UseRAG != nil {
		useRAG = *req.UseRAG
	}
	result, method := h.generator.Generate(c.Request.Context(), model.GenerationRequest{
		QueryText:         req.QueryText,
		NumQuestions:      req.NumQuestions,
		UseRAG:            useRAG,
		SelectedDocuments: req.SelectedDocuments,
		TargetOutcome:     req.TargetOutcome,
	})
	response.Success(c, generateResponse{Result: result, Method: method})
}
