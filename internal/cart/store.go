package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/catalog"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/metrics"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/repository"
)

var (
	ErrInvalidLine     = errors.New("cart line invalid")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrPersistFailed   = errors.New("cart persist failed")
	ErrStorageNotReady = errors.New("cart storage not ready")
)

// Options 购物车选项
type Options struct {
	LensChangeMode string // reset / in_place
	Metrics        *metrics.Metrics
}

// State 购物车快照
type State struct {
	Lines    []models.CartLine `json:"items"`
	IsOpen   bool              `json:"is_open"`
	Subtotal models.Money      `json:"subtotal"`
	Count    int               `json:"count"`
}

// Store 会话级购物车
type Store struct {
	mu       sync.Mutex
	repo     repository.StorageRepository
	key      string
	lines    []models.CartLine
	isOpen   bool
	lensMode string
	metrics  *metrics.Metrics
}

// NewStore 创建购物车，状态为空，需调用 Hydrate 从存储恢复
func NewStore(repo repository.StorageRepository, sessionID string, opts Options) *Store {
	mode := strings.ToLower(strings.TrimSpace(opts.LensChangeMode))
	if mode != constants.LensChangeModeInPlace {
		mode = constants.LensChangeModeReset
	}
	return &Store{
		repo:     repo,
		key:      repository.SessionKey(sessionID, constants.StorageKeyCart),
		lines:    make([]models.CartLine, 0),
		lensMode: mode,
		metrics:  opts.Metrics,
	}
}

// Hydrate 从持久化存储恢复购物车；内容损坏时记录告警并以空购物车继续
func (s *Store) Hydrate(ctx context.Context) error {
	if s.repo == nil {
		return ErrStorageNotReady
	}
	raw, ok, err := s.repo.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make([]models.CartLine, 0)
	if !ok || len(raw) == 0 {
		return nil
	}
	var stored []models.CartLine
	if err := json.Unmarshal(raw, &stored); err != nil {
		logger.Warnw("cart_hydrate_corrupt_entry", "key", s.key, "error", err)
		return nil
	}
	seen := make(map[string]struct{}, len(stored))
	for _, line := range stored {
		if !line.Valid() {
			continue
		}
		if _, dup := seen[line.ProductID]; dup {
			continue
		}
		seen[line.ProductID] = struct{}{}
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		s.lines = append(s.lines, line.Clone())
	}
	return nil
}

// AddLine 加入商品：已存在则数量 +1（忽略新传入的价格与镜片），否则以数量 1 新增
func (s *Store) AddLine(ctx context.Context, item models.CartLine) error {
	if !item.Valid() {
		return ErrInvalidLine
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(item)
	s.metrics.IncCartMutation("add")
	return s.persistLocked(ctx)
}

func (s *Store) addLocked(item models.CartLine) {
	if idx := s.indexLocked(item.ProductID); idx >= 0 {
		s.lines[idx].Quantity++
	} else {
		line := item.Clone()
		line.Quantity = 1
		s.lines = append(s.lines, line)
	}
	s.isOpen = true
}

// RemoveLine 删除商品行，不存在时为 no-op
func (s *Store) RemoveLine(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
	s.metrics.IncCartMutation("remove")
	return s.persistLocked(ctx)
}

func (s *Store) removeLocked(productID string) {
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
}

// SetQuantity 设置数量（最小为 1）；行不存在时为 no-op
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(productID)
	if idx < 0 {
		return nil
	}
	s.lines[idx].Quantity = quantity
	s.metrics.IncCartMutation("set_quantity")
	return s.persistLocked(ctx)
}

// Clear 清空购物车并删除持久化内容
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make([]models.CartLine, 0)
	s.metrics.IncCartMutation("clear")
	if s.repo == nil {
		return ErrStorageNotReady
	}
	if err := s.repo.Clear(ctx, s.key); err != nil {
		logger.Warnw("cart_clear_storage_failed", "key", s.key, "error", err)
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

// ReplaceLensForLine 更换镜片：先删除再以新单价加入。
// 数量会重置为 1，且该行移动到末尾。
func (s *Store) ReplaceLensForLine(ctx context.Context, productID string, lens *models.SelectedLens, unitPrice models.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.replaceLensLocked(productID, lens, unitPrice) {
		return ErrLineNotFound
	}
	return s.persistLocked(ctx)
}

func (s *Store) replaceLensLocked(productID string, lens *models.SelectedLens, unitPrice models.Money) bool {
	idx := s.indexLocked(productID)
	if idx < 0 {
		return false
	}
	replacement := s.lines[idx].Clone()
	replacement.UnitPrice = unitPrice
	replacement.SelectedLens = cloneLens(lens)
	s.removeLocked(productID)
	s.addLocked(replacement)
	s.metrics.IncCartMutation("replace_lens")
	return true
}

// UpdateLensInPlace 原位更换镜片，保留数量与位置
func (s *Store) UpdateLensInPlace(ctx context.Context, productID string, lens *models.SelectedLens, unitPrice models.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.updateLensLocked(productID, lens, unitPrice) {
		return ErrLineNotFound
	}
	return s.persistLocked(ctx)
}

func (s *Store) updateLensLocked(productID string, lens *models.SelectedLens, unitPrice models.Money) bool {
	idx := s.indexLocked(productID)
	if idx < 0 {
		return false
	}
	s.lines[idx].UnitPrice = unitPrice
	s.lines[idx].SelectedLens = cloneLens(lens)
	s.metrics.IncCartMutation("update_lens")
	return true
}

// ChangeLens 按配置的模式更换镜片，单价由行内基础价重新计算
func (s *Store) ChangeLens(ctx context.Context, productID string, lens *models.SelectedLens) (models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(productID)
	if idx < 0 {
		return models.CartLine{}, ErrLineNotFound
	}
	unitPrice := catalog.RepriceLine(s.lines[idx], lens)
	if s.lensMode == constants.LensChangeModeInPlace {
		s.updateLensLocked(productID, lens, unitPrice)
	} else {
		s.replaceLensLocked(productID, lens, unitPrice)
	}
	updated := s.lines[s.indexLocked(productID)].Clone()
	return updated, s.persistLocked(ctx)
}

// LensChangeMode 当前镜片更换模式
func (s *Store) LensChangeMode() string {
	return s.lensMode
}

// Toggle 切换抽屉开关（仅 UI 状态，不持久化）
func (s *Store) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = !s.isOpen
	return s.isOpen
}

// IsOpen 抽屉是否打开
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

// Line 查找单行副本
func (s *Store) Line(productID string) (models.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(productID)
	if idx < 0 {
		return models.CartLine{}, false
	}
	return s.lines[idx].Clone(), true
}

// Lines 返回所有行的副本
func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLinesLocked()
}

// Subtotal 小计 = Σ 单价 × 数量
func (s *Store) Subtotal() models.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotalOf(s.lines)
}

// Count 商品总件数
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countOf(s.lines)
}

// Empty 是否为空
func (s *Store) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// Snapshot 一次性读取一致的购物车状态
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Lines:    s.copyLinesLocked(),
		IsOpen:   s.isOpen,
		Subtotal: subtotalOf(s.lines),
		Count:    countOf(s.lines),
	}
}

func (s *Store) indexLocked(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) copyLinesLocked() []models.CartLine {
	out := make([]models.CartLine, len(s.lines))
	for i, line := range s.lines {
		out[i] = line.Clone()
	}
	return out
}

// persistLocked 写入存储；失败时内存状态保留
func (s *Store) persistLocked(ctx context.Context) error {
	if s.repo == nil {
		return ErrStorageNotReady
	}
	raw, err := json.Marshal(s.lines)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	if err := s.repo.Save(ctx, s.key, raw); err != nil {
		logger.Warnw("cart_persist_failed", "key", s.key, "error", err)
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

func subtotalOf(lines []models.CartLine) models.Money {
	total := models.Money{}
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

func countOf(lines []models.CartLine) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}

func cloneLens(lens *models.SelectedLens) *models.SelectedLens {
	if lens == nil {
		return nil
	}
	copied := *lens
	return &copied
}
