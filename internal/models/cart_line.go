package models

import "strings"

// SelectedLens 购物车行所选镜片
type SelectedLens struct {
	LensType        string `json:"lensType"`              // 镜片类型
	AdditionalPrice Money  `json:"additionalPrice"`       // 镜片加价
	Description     string `json:"description,omitempty"` // 描述
}

// CartLine 购物车行（单价已包含镜片加价）
type CartLine struct {
	ProductID    string        `json:"id"`                     // 商品ID
	Name         string        `json:"name"`                   // 商品名称（加入时快照）
	Image        string        `json:"image"`                  // 商品图片（加入时快照）
	UnitPrice    Money         `json:"price"`                  // 单价（含镜片加价）
	Quantity     int           `json:"quantity"`               // 数量（至少为 1）
	SelectedLens *SelectedLens `json:"selectedLens,omitempty"` // 所选镜片
}

// LineTotal 行小计
func (l CartLine) LineTotal() Money {
	return l.UnitPrice.Times(l.Quantity)
}

// LensPrice 镜片加价（无镜片为 0）
func (l CartLine) LensPrice() Money {
	if l.SelectedLens == nil {
		return Money{}
	}
	return l.SelectedLens.AdditionalPrice
}

// Clone 深拷贝，避免外部修改内部状态
func (l CartLine) Clone() CartLine {
	cloned := l
	if l.SelectedLens != nil {
		lens := *l.SelectedLens
		cloned.SelectedLens = &lens
	}
	return cloned
}

// Valid 是否具备最基本的商品标识
func (l CartLine) Valid() bool {
	return strings.TrimSpace(l.ProductID) != ""
}
