package models

import "strings"

// User 登录用户
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthSession 持久化的登录态
type AuthSession struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Authenticated 是否已登录（以 token 是否存在为准）
func (a *AuthSession) Authenticated() bool {
	return a != nil && strings.TrimSpace(a.Token) != ""
}

// Address 收货地址
type Address struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Normalize 去除首尾空白
func (a Address) Normalize() Address {
	return Address{
		Name:    strings.TrimSpace(a.Name),
		Phone:   strings.TrimSpace(a.Phone),
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		Zip:     strings.TrimSpace(a.Zip),
		Country: strings.TrimSpace(a.Country),
	}
}

// MissingFields 返回缺失的必填字段
func (a Address) MissingFields() []string {
	n := a.Normalize()
	missing := make([]string, 0)
	checks := []struct {
		name  string
		value string
	}{
		{"name", n.Name},
		{"phone", n.Phone},
		{"street", n.Street},
		{"city", n.City},
		{"state", n.State},
		{"zip", n.Zip},
	}
	for _, check := range checks {
		if check.value == "" {
			missing = append(missing, check.name)
		}
	}
	return missing
}

// Profile 用户资料（用于预填地址）
type Profile struct {
	ID      string   `json:"_id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Address *Address `json:"address"`
}

// HasSavedAddress 是否已保存地址
func (p *Profile) HasSavedAddress() bool {
	return p != nil && p.Address != nil && strings.TrimSpace(p.Address.Street) != ""
}
