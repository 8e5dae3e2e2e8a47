package account

import (
	"strings"
	"time"
)

// 系统内置角色。driver 角色的账号通过 fleet.FindDriverByUserID 反查司机记录。
const (
	RoleCustomer   = "customer"
	RoleDriver     = "driver"
	RoleDispatcher = "dispatcher"
	RoleAdmin      = "admin"
)

// Account 登录账号 GORM 模型（客户 / 司机 / 调度员 / 管理员共用）。
type Account struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string    `gorm:"size:128;not null"`
	PasswordSalt string    `gorm:"size:64;not null"`
	Nickname     string    `gorm:"size:64"`
	Phone        string    `gorm:"size:32"`
	Email        string    `gorm:"size:128"`
	Roles        string    `gorm:"size:256;not null"` // 逗号分隔，例如 "customer,driver"
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (a Account) RolesSlice() []string {
	if strings.TrimSpace(a.Roles) == "" {
		return nil
	}
	parts := strings.Split(a.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (a Account) HasRole(role string) bool {
	role = strings.TrimSpace(strings.ToLower(role))
	for _, r := range a.RolesSlice() {
		if strings.ToLower(r) == role {
			return true
		}
	}
	return false
}

func RolesJoin(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return strings.Join(out, ",")
}
