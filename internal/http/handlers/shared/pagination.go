package shared

import "github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/response"

// NormalizePagination 归一化分页参数。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// PageBounds 计算切片分页区间与分页信息（后端接口不分页，由本服务切分）。
func PageBounds(total, page, pageSize int) (int, int, response.Pagination) {
	page, pageSize = NormalizePagination(page, pageSize)
	// 先比较页号再相乘，超大页号不会溢出为负数
	start := total
	if page-1 <= total/pageSize {
		start = min((page-1)*pageSize, total)
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	totalPage := int64(0)
	if total > 0 {
		totalPage = int64((total + pageSize - 1) / pageSize)
	}
	return start, end, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     int64(total),
		TotalPage: totalPage,
	}
}
