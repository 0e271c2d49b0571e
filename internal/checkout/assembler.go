package checkout

import (
	"strings"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"
)

// OrderTotal 应付金额 = max(0, 小计 - 折扣)
func OrderTotal(subtotal, discount models.Money) models.Money {
	return subtotal.Sub(discount).ClampZero()
}

// BuildOrderPayload 组装订单提交载荷，只做结构转换，不做校验。
// 载荷中的金额由客户端计算，订单服务必须自行重新计价。
func BuildOrderPayload(
	lines []models.CartLine,
	subtotal models.Money,
	discount models.Money,
	total models.Money,
	couponCode string,
	address models.Address,
	prescription *models.Prescription,
) models.OrderSubmission {
	items := make([]models.OrderLineItem, 0, len(lines))
	for _, line := range lines {
		item := models.OrderLineItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
			Image:     line.Image,
		}
		if line.SelectedLens != nil {
			lens := *line.SelectedLens
			item.SelectedLens = &lens
		}
		items = append(items, item)
	}

	submission := models.OrderSubmission{
		Items:    items,
		Subtotal: subtotal,
		Discount: discount,
		Total:    total,
		Address:  address,
	}
	if code := strings.TrimSpace(couponCode); code != "" {
		submission.CouponCode = &code
	}
	if !prescription.Empty() {
		copied := *prescription
		submission.Prescription = &copied
	}
	return submission
}
