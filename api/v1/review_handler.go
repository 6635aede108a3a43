package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/CCDD2022/mall-system/internal/service"
	"github.com/gin-gonic/gin"
)

// ReviewHandler 商品评价 HTTP 处理器
type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterPublicRoutes 评价读路由（公开）
func (h *ReviewHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/products/:id/reviews", h.ListReviews)
}

// RegisterRoutes 评价写路由（需JWT）
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/products/:id/reviews", h.CreateReview)
	rg.DELETE("/reviews/:id", h.DeleteReview)
}

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment" binding:"required,min=10,max=500"`
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadParams(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	review, err := h.reviewService.CreateReview(ctx, GetPrincipal(c), productID, req.Rating, req.Comment)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, review)
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, limit := parsePageLimit(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	reviews, total, err := h.reviewService.ListReviews(ctx, productID, page, limit)
	if err != nil {
		Fail(c, err)
		return
	}

	OK(c, http.StatusOK, gin.H{
		"reviews":    reviews,
		"pagination": Pagination{Page: page, Limit: limit, Total: total},
	})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.reviewService.DeleteReview(ctx, GetPrincipal(c), reviewID); err != nil {
		Fail(c, err)
		return
	}
	OKMsg(c, "评价已删除")
}
