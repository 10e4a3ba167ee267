package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github/itish2003/medassist/models"
	"github/itish2003/medassist/services"
)

// RAGController serves the drug information form. It depends on the
// RAGService to perform the actual business logic.
type RAGController struct {
	ragService services.RAGService
}

// NewRAGController is a constructor function that creates a new RAGController.
func NewRAGController(service services.RAGService) *RAGController {
	return &RAGController{
		ragService: service,
	}
}

// DrugInfo is the Gin handler for POST /drug-info. Every pipeline outcome,
// including failures, renders as a normal 200 page.
func (c *RAGController) DrugInfo(ctx *gin.Context) {
	var req models.DrugInfoRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.HTML(http.StatusBadRequest, "bad_request.html", "the drug and question fields are required")
		return
	}

	result := c.ragService.DrugInfo(ctx.Request.Context(), req)
	ctx.HTML(http.StatusOK, "drug_info.html", result)
}
