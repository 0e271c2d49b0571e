package models

// LensOption 商品可选镜片
type LensOption struct {
	LensType        string `json:"lensType"`
	AdditionalPrice Money  `json:"additionalPrice"`
	Description     string `json:"description,omitempty"`
}

// ToSelected 转换为购物车所选镜片
func (o LensOption) ToSelected() *SelectedLens {
	return &SelectedLens{
		LensType:        o.LensType,
		AdditionalPrice: o.AdditionalPrice,
		Description:     o.Description,
	}
}

// Product 商品目录条目（来自后端 API）
type Product struct {
	ID            string       `json:"id"`
	MongoID       string       `json:"_id,omitempty"`
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	Price         Money        `json:"price"`
	DiscountPrice *Money       `json:"discountPrice,omitempty"`
	Image         string       `json:"image"`
	Description   string       `json:"description,omitempty"`
	Rating        float64      `json:"rating,omitempty"`
	Reviews       int          `json:"reviews,omitempty"`
	InStock       *bool        `json:"inStock,omitempty"`
	IsDeal        bool         `json:"isDeal,omitempty"`
	FrameType     string       `json:"frameType,omitempty"`
	FrameShape    string       `json:"frameShape,omitempty"`
	Gender        string       `json:"gender,omitempty"`
	FrameMaterial string       `json:"frameMaterial,omitempty"`
	LensOptions   []LensOption `json:"lensOptions,omitempty"`
}

// Identifier 返回稳定的商品标识
func (p *Product) Identifier() string {
	if p == nil {
		return ""
	}
	if p.ID != "" {
		return p.ID
	}
	return p.MongoID
}

// Available 是否可售（未声明视为有货）
func (p *Product) Available() bool {
	return p != nil && (p.InStock == nil || *p.InStock)
}

// ProductFilter 商品列表筛选
type ProductFilter struct {
	Category   string
	FrameType  string
	FrameShape string
	Gender     string
	MinPrice   int64
	MaxPrice   int64
}
