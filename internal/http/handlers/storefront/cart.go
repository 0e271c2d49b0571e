package storefront

import (
	"strings"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/cart"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/catalog"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/coupon"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/response"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/session"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 加入购物车请求
type CartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	LensType  string `json:"lens_type"`
}

// CartQuantityRequest 修改数量请求（0 与负数合法，由购物车按 1 处理）
type CartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartLensRequest 更换镜片请求（lens_type 为空表示去掉镜片）
type CartLensRequest struct {
	LensType string `json:"lens_type"`
}

// CartLineResponse 购物车行响应
type CartLineResponse struct {
	models.CartLine
	BasePrice models.Money `json:"base_price"`
	LineTotal models.Money `json:"line_total"`
	Display   string       `json:"line_total_display"`
}

// CartResponse 购物车响应
type CartResponse struct {
	Items           []CartLineResponse `json:"items"`
	IsOpen          bool               `json:"is_open"`
	Count           int                `json:"count"`
	Subtotal        models.Money       `json:"subtotal"`
	SubtotalDisplay string             `json:"subtotal_display"`
	Coupon          coupon.State       `json:"coupon"`
	LensChangeMode  string             `json:"lens_change_mode"`
}

func buildCartResponse(sess *session.Session) CartResponse {
	state := sess.Cart.Snapshot()
	items := make([]CartLineResponse, 0, len(state.Lines))
	for _, line := range state.Lines {
		total := line.LineTotal()
		items = append(items, CartLineResponse{
			CartLine:  line,
			BasePrice: catalog.BasePrice(line),
			LineTotal: total,
			Display:   total.Display(),
		})
	}
	return CartResponse{
		Items:           items,
		IsOpen:          state.IsOpen,
		Count:           state.Count,
		Subtotal:        state.Subtotal,
		SubtotalDisplay: state.Subtotal.Display(),
		Coupon:          sess.Coupon.Snapshot(state.Subtotal),
		LensChangeMode:  sess.Cart.LensChangeMode(),
	}
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	response.Success(c, buildCartResponse(sess))
}

// AddCartItem 加入购物车（已存在则数量 +1），价格以后端商品为准
func (h *Handler) AddCartItem(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, constants.MsgRequestInvalid, nil)
		return
	}

	product, err := h.loadProduct(c, req.ProductID)
	if err != nil {
		respondBackendError(c, err, constants.MsgProductNotFound)
		return
	}
	if !product.Available() {
		respondError(c, response.CodeBadRequest, constants.MsgProductUnavailable, nil)
		return
	}

	var selected *models.SelectedLens
	if lensType := strings.TrimSpace(req.LensType); lensType != "" {
		option, err := h.LensMenu.ResolveLens(product, lensType)
		if err != nil {
			respondCartError(c, err)
			return
		}
		selected = option.ToSelected()
	}

	line := models.CartLine{
		ProductID:    product.Identifier(),
		Name:         product.Name,
		Image:        product.Image,
		UnitPrice:    catalog.FinalPrice(product, selected),
		Quantity:     1,
		SelectedLens: selected,
	}
	if err := sess.Cart.AddLine(c.Request.Context(), line); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, buildCartResponse(sess))
}

// DeleteCartItem 删除购物车行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	productID := strings.TrimSpace(c.Param("product_id"))
	if productID == "" {
		respondError(c, response.CodeBadRequest, constants.MsgRequestInvalid, nil)
		return
	}
	if err := sess.Cart.RemoveLine(c.Request.Context(), productID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, buildCartResponse(sess))
}

// UpdateCartQuantity 修改数量（小于 1 按 1 处理，行不存在时不做任何改动）
func (h *Handler) UpdateCartQuantity(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, constants.MsgRequestInvalid, nil)
		return
	}
	if err := sess.Cart.SetQuantity(c.Request.Context(), c.Param("product_id"), *req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, buildCartResponse(sess))
}

// ChangeCartLens 更换购物车行的镜片
func (h *Handler) ChangeCartLens(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	var req CartLensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, constants.MsgRequestInvalid, nil)
		return
	}
	productID := strings.TrimSpace(c.Param("product_id"))
	if _, exists := sess.Cart.Line(productID); !exists {
		respondCartError(c, cart.ErrLineNotFound)
		return
	}

	var selected *models.SelectedLens
	if lensType := strings.TrimSpace(req.LensType); lensType != "" {
		// 商品详情取不到时退回通用镜片菜单
		product, err := h.loadProduct(c, productID)
		if err != nil {
			product = nil
		}
		option, err := h.LensMenu.ResolveLens(product, lensType)
		if err != nil {
			respondCartError(c, err)
			return
		}
		selected = option.ToSelected()
	}

	if _, err := sess.Cart.ChangeLens(c.Request.Context(), productID, selected); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, buildCartResponse(sess))
}

// ToggleCart 切换购物车抽屉开合（不持久化）
func (h *Handler) ToggleCart(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	sess.Cart.Toggle()
	response.Success(c, buildCartResponse(sess))
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	if err := sess.ClearCart(c.Request.Context()); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, buildCartResponse(sess))
}
