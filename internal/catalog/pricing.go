package catalog

import (
	"errors"
	"strings"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"

	"github.com/shopspring/decimal"
)

// ErrLensNotFound 镜片类型不在菜单中
var ErrLensNotFound = errors.New("lens option not found")

// 默认镜片菜单
var defaultLensMenu = []models.LensOption{
	{LensType: "Standard Lens", AdditionalPrice: models.NewMoneyFromInt(0)},
	{LensType: "Anti-Glare Lens", AdditionalPrice: models.NewMoneyFromInt(500)},
	{LensType: "Blue Light Filter", AdditionalPrice: models.NewMoneyFromInt(800)},
	{LensType: "Photochromic Lens", AdditionalPrice: models.NewMoneyFromInt(1500)},
	{LensType: "Polarized Lens", AdditionalPrice: models.NewMoneyFromInt(1200)},
}

// LensMenu 镜片菜单
type LensMenu struct {
	options []models.LensOption
}

// DefaultLensMenu 返回内置菜单
func DefaultLensMenu() *LensMenu {
	return NewLensMenu(nil)
}

// NewLensMenu 从配置构建菜单，配置为空时使用内置菜单
func NewLensMenu(items []config.LensMenuItem) *LensMenu {
	if len(items) == 0 {
		options := make([]models.LensOption, len(defaultLensMenu))
		copy(options, defaultLensMenu)
		return &LensMenu{options: options}
	}
	options := make([]models.LensOption, 0, len(items))
	for _, item := range items {
		lensType := strings.TrimSpace(item.LensType)
		if lensType == "" {
			continue
		}
		options = append(options, models.LensOption{
			LensType:        lensType,
			AdditionalPrice: models.NewMoneyFromInt(item.AdditionalPrice),
			Description:     strings.TrimSpace(item.Description),
		})
	}
	return &LensMenu{options: options}
}

// Options 菜单副本
func (m *LensMenu) Options() []models.LensOption {
	if m == nil {
		return nil
	}
	out := make([]models.LensOption, len(m.options))
	copy(out, m.options)
	return out
}

// Find 按类型查找镜片（忽略大小写）
func (m *LensMenu) Find(lensType string) (models.LensOption, bool) {
	if m == nil {
		return models.LensOption{}, false
	}
	target := strings.TrimSpace(lensType)
	for _, option := range m.options {
		if strings.EqualFold(option.LensType, target) {
			return option, true
		}
	}
	return models.LensOption{}, false
}

// ResolveLens 解析商品可选镜片：商品自带选项优先，否则使用菜单
func (m *LensMenu) ResolveLens(product *models.Product, lensType string) (models.LensOption, error) {
	if strings.TrimSpace(lensType) == "" {
		return models.LensOption{}, ErrLensNotFound
	}
	if product != nil {
		for _, option := range product.LensOptions {
			if strings.EqualFold(option.LensType, strings.TrimSpace(lensType)) {
				return option, nil
			}
		}
	}
	option, ok := m.Find(lensType)
	if !ok {
		return models.LensOption{}, ErrLensNotFound
	}
	return option, nil
}

// ProductBasePrice 商品基础售价（优惠价优先）
func ProductBasePrice(product *models.Product) models.Money {
	if product == nil {
		return models.Money{}
	}
	if product.DiscountPrice != nil && product.DiscountPrice.IsPositive() {
		return *product.DiscountPrice
	}
	return product.Price
}

// FinalPrice 含镜片加价的最终单价
func FinalPrice(product *models.Product, lens *models.SelectedLens) models.Money {
	base := ProductBasePrice(product)
	if lens == nil {
		return base
	}
	return base.Add(lens.AdditionalPrice)
}

// BasePrice 由购物车行反推镜片前的单价
func BasePrice(line models.CartLine) models.Money {
	return line.UnitPrice.Sub(line.LensPrice())
}

// RepriceLine 为购物车行更换镜片后的新单价
func RepriceLine(line models.CartLine, lens *models.SelectedLens) models.Money {
	base := BasePrice(line)
	if lens == nil {
		return base
	}
	return base.Add(lens.AdditionalPrice)
}

// DiscountPercent 展示用的折扣百分比（四舍五入）
func DiscountPercent(product *models.Product) int {
	if product == nil || product.DiscountPrice == nil || !product.Price.IsPositive() {
		return 0
	}
	if product.DiscountPrice.GreaterThanOrEqual(product.Price.Decimal) {
		return 0
	}
	saved := product.Price.Sub(*product.DiscountPrice)
	percent := saved.Decimal.Div(product.Price.Decimal).Mul(decimal.NewFromInt(100)).Round(0)
	return int(percent.IntPart())
}

// FilterProducts 本地筛选商品（后端可能忽略查询参数）
func FilterProducts(products []models.Product, filter models.ProductFilter) []models.Product {
	out := make([]models.Product, 0, len(products))
	category := normalizeSlug(filter.Category)
	for _, product := range products {
		if category != "" && normalizeSlug(product.Category) != category {
			continue
		}
		if filter.FrameType != "" && !strings.EqualFold(product.FrameType, filter.FrameType) {
			continue
		}
		if filter.FrameShape != "" && !strings.EqualFold(product.FrameShape, filter.FrameShape) {
			continue
		}
		if filter.Gender != "" && !strings.EqualFold(product.Gender, filter.Gender) {
			continue
		}
		price := ProductBasePrice(&product)
		if filter.MinPrice > 0 && price.LessThan(decimal.NewFromInt(filter.MinPrice)) {
			continue
		}
		if filter.MaxPrice > 0 && price.GreaterThan(decimal.NewFromInt(filter.MaxPrice)) {
			continue
		}
		out = append(out, product)
	}
	return out
}

// normalizeSlug 统一分类名与 URL slug（"Sun Glasses" 与 "sun-glasses" 视为相同）
func normalizeSlug(value string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(value)), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	return strings.Join(fields, "-")
}
