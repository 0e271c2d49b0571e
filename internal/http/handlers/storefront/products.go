package storefront

import (
	"strconv"
	"strings"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/cache"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/catalog"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	handlershared "github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/handlers/shared"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/response"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"

	"github.com/gin-gonic/gin"
)

// ProductResponse 商品响应（附带展示用价格信息）
type ProductResponse struct {
	models.Product
	FinalPrice      models.Money `json:"final_price"`
	PriceDisplay    string       `json:"price_display"`
	DiscountPercent int          `json:"discount_percent"`
}

func buildProductResponse(product *models.Product) ProductResponse {
	final := catalog.ProductBasePrice(product)
	return ProductResponse{
		Product:         *product,
		FinalPrice:      final,
		PriceDisplay:    final.Display(),
		DiscountPercent: catalog.DiscountPercent(product),
	}
}

// loadProduct 读取商品：先查缓存，未命中再请求后端
func (h *Handler) loadProduct(c *gin.Context, productID string) (*models.Product, error) {
	ctx := c.Request.Context()
	productID = strings.TrimSpace(productID)
	if cached, hit, err := cache.GetProduct(ctx, productID); err == nil && hit {
		return cached, nil
	} else if err != nil {
		handlershared.RequestLog(c).Warnw("product_cache_read_failed", "product_id", productID, "error", err)
	}
	product, err := h.APIClient.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetProduct(ctx, product); err != nil {
		handlershared.RequestLog(c).Warnw("product_cache_write_failed", "product_id", productID, "error", err)
	}
	return product, nil
}

// GetProducts 商品列表（分类按 slug 在本地过滤，分页由本服务切分）
func (h *Handler) GetProducts(c *gin.Context) {
	filter := models.ProductFilter{
		Category:   strings.TrimSpace(c.Query("category")),
		FrameType:  strings.TrimSpace(c.Query("frame_type")),
		FrameShape: strings.TrimSpace(c.Query("frame_shape")),
		Gender:     strings.TrimSpace(c.Query("gender")),
		MinPrice:   parseInt64Query(c, "min_price"),
		MaxPrice:   parseInt64Query(c, "max_price"),
	}
	products, err := h.APIClient.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondBackendError(c, err, "")
		return
	}
	filtered := catalog.FilterProducts(products, filter)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	start, end, pagination := handlershared.PageBounds(len(filtered), page, pageSize)

	items := make([]ProductResponse, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, buildProductResponse(&filtered[i]))
	}
	response.SuccessWithPage(c, items, pagination)
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("id"))
	if productID == "" {
		respondError(c, response.CodeBadRequest, constants.MsgRequestInvalid, nil)
		return
	}
	product, err := h.loadProduct(c, productID)
	if err != nil {
		respondBackendError(c, err, constants.MsgProductNotFound)
		return
	}
	response.Success(c, buildProductResponse(product))
}

// GetLenses 通用镜片菜单
func (h *Handler) GetLenses(c *gin.Context) {
	response.Success(c, h.LensMenu.Options())
}

func parseInt64Query(c *gin.Context, key string) int64 {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
