package models

import "encoding/json"

// OrderLineItem 订单提交中的商品行
type OrderLineItem struct {
	ProductID    string        `json:"productId"`
	Name         string        `json:"name"`
	Price        Money         `json:"price"`
	Quantity     int           `json:"quantity"`
	Image        string        `json:"image"`
	SelectedLens *SelectedLens `json:"selectedLens,omitempty"`
}

// Prescription 处方附件引用
type Prescription struct {
	PrescriptionImage string `json:"prescriptionImage"` // 上传后的图片地址
	Message           string `json:"message"`           // 度数或备注
}

// Empty 是否没有任何处方信息
func (p *Prescription) Empty() bool {
	return p == nil || (p.PrescriptionImage == "" && p.Message == "")
}

// OrderSubmission 订单提交载荷
//
// Total 由客户端计算，仅供参考；订单服务必须根据商品与镜片标识重新计价。
type OrderSubmission struct {
	Items        []OrderLineItem `json:"items"`
	Subtotal     Money           `json:"subtotal"`
	Discount     Money           `json:"discount"`
	Total        Money           `json:"total"`
	CouponCode   *string         `json:"couponCode"`
	Address      Address         `json:"address"`
	Prescription *Prescription   `json:"prescription,omitempty"`
}

// OrderCreated 订单创建响应
type OrderCreated struct {
	ID      string          `json:"_id"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"-"`
}

// OrderRecord 历史订单
type OrderRecord struct {
	ID           string          `json:"_id"`
	Items        []OrderLineItem `json:"items"`
	Subtotal     Money           `json:"subtotal"`
	Discount     Money           `json:"discount"`
	Total        Money           `json:"total"`
	CouponCode   string          `json:"couponCode,omitempty"`
	Address      Address         `json:"address"`
	Status       string          `json:"status"`
	Prescription *Prescription   `json:"prescription,omitempty"`
	CreatedAt    string          `json:"createdAt"`
}
