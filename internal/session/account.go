package session

import (
	"context"
	"errors"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"

	"golang.org/x/sync/errgroup"
)

// ErrNotAuthenticated 未登录
var ErrNotAuthenticated = errors.New("not authenticated")

// AccountBackend 账户页数据来源
type AccountBackend interface {
	GetProfile(ctx context.Context, token string) (*models.Profile, error)
	ListMyOrders(ctx context.Context, token string) ([]models.OrderRecord, error)
}

// Account 账户页数据
type Account struct {
	User    *models.User         `json:"user"`
	Profile *models.Profile      `json:"profile"`
	Orders  []models.OrderRecord `json:"orders"`
}

// LoadAccount 并发拉取资料与订单；任一失败时另一项仍然返回
func (s *Session) LoadAccount(ctx context.Context, backend AccountBackend) (*Account, error) {
	if !s.Auth.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	token := s.Auth.Token()
	account := &Account{
		User:   s.Auth.User(),
		Orders: make([]models.OrderRecord, 0),
	}

	var profileErr, ordersErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := backend.GetProfile(gctx, token)
		if err != nil {
			profileErr = err
			return nil
		}
		account.Profile = profile
		return nil
	})
	g.Go(func() error {
		orders, err := backend.ListMyOrders(gctx, token)
		if err != nil {
			ordersErr = err
			return nil
		}
		account.Orders = orders
		return nil
	})
	_ = g.Wait()

	if profileErr != nil && ordersErr != nil {
		return nil, errors.Join(profileErr, ordersErr)
	}
	return account, nil
}
