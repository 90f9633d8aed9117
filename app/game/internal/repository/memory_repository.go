package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/app/game/internal/dao"
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// partition 单个玩家的全部数据
type partition struct {
	player     *model.Player
	characters map[string]*model.CharacterInstance
	equipment  map[model.SlotType]*model.EquipmentSlot
	content    map[string]*model.ContentJob
	gacha      []*model.GachaRecord
}

func newPartition() *partition {
	return &partition{
		characters: make(map[string]*model.CharacterInstance),
		equipment:  make(map[model.SlotType]*model.EquipmentSlot),
		content:    make(map[string]*model.ContentJob),
	}
}

// clone 深拷贝，工作单元只修改副本
func (p *partition) clone() *partition {
	n := newPartition()
	if p.player != nil {
		n.player = p.player.Clone()
	}
	for k, v := range p.characters {
		n.characters[k] = v.Clone()
	}
	for k, v := range p.equipment {
		n.equipment[k] = v.Clone()
	}
	for k, v := range p.content {
		n.content[k] = v.Clone()
	}
	n.gacha = slices.Clone(p.gacha)
	return n
}

// memoryRepository 内存仓储，写入在副本上进行，成功后整体替换
// 同一玩家的工作单元串行，不同玩家只在替换分区时短暂争用 mu
type memoryRepository struct {
	mu         sync.RWMutex
	partitions map[string]*partition
	writers    map[string]*sync.Mutex
	logger     logger.Logger
}

// NewMemoryRepository 创建内存仓储
func NewMemoryRepository(l logger.Logger) Repository {
	return &memoryRepository{
		partitions: make(map[string]*partition),
		writers:    make(map[string]*sync.Mutex),
		logger:     l.Named("repository.memory"),
	}
}

func (r *memoryRepository) Atomic(ctx context.Context, playerID string, fn func(ctx context.Context, uow UnitOfWork) error) error {
	w := r.writer(playerID)
	w.Lock()
	defer w.Unlock()

	r.mu.RLock()
	cur, ok := r.partitions[playerID]
	r.mu.RUnlock()

	var work *partition
	if ok {
		work = cur.clone()
	} else {
		work = newPartition()
	}

	if err := fn(ctx, &memoryUnit{p: work, playerID: playerID}); err != nil {
		return err
	}
	if work.player != nil {
		r.mu.Lock()
		r.partitions[playerID] = work
		r.mu.Unlock()
	}
	return nil
}

// writer 玩家的写锁，与分区一样不回收
func (r *memoryRepository) writer(playerID string) *sync.Mutex {
	r.mu.RLock()
	w, ok := r.writers[playerID]
	r.mu.RUnlock()
	if ok {
		return w
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok = r.writers[playerID]; !ok {
		w = &sync.Mutex{}
		r.writers[playerID] = w
	}
	return w
}

func (r *memoryRepository) partition(id string) *partition {
	if p, ok := r.partitions[id]; ok && p.player != nil {
		return p
	}
	return nil
}

func (r *memoryRepository) GetPlayer(_ context.Context, id string) (*model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.partition(id)
	if p == nil {
		return nil, ErrNotFound
	}
	return p.player.Clone(), nil
}

func (r *memoryRepository) ListCharacters(_ context.Context, playerID string) ([]*model.CharacterInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.partition(playerID)
	if p == nil {
		return []*model.CharacterInstance{}, nil
	}
	return sortedCharacters(p.characters), nil
}

func (r *memoryRepository) ListEquipment(_ context.Context, playerID string) ([]*model.EquipmentSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.partition(playerID)
	if p == nil {
		return []*model.EquipmentSlot{}, nil
	}
	return cloneSlots(p.equipment), nil
}

func (r *memoryRepository) FindProducing(_ context.Context, playerID string) (*model.ContentJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.partition(playerID)
	if p == nil {
		return nil, nil
	}
	return findProducing(p), nil
}

func (r *memoryRepository) ListHistory(_ context.Context, playerID string, page, pageSize int) (*model.ContentPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := &model.ContentPage{Items: []*model.ContentJob{}, Page: page, PageSize: pageSize}
	p := r.partition(playerID)
	if p == nil {
		return out, nil
	}

	uploaded := make([]*model.ContentJob, 0)
	for _, j := range p.content {
		if j.Status == model.ContentUploaded {
			uploaded = append(uploaded, j)
		}
	}
	slices.SortFunc(uploaded, func(a, b *model.ContentJob) int {
		if c := b.UploadedAt.Compare(*a.UploadedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out.Total = int64(len(uploaded))
	from := min((page-1)*pageSize, len(uploaded))
	to := min(from+pageSize, len(uploaded))
	for _, j := range uploaded[from:to] {
		out.Items = append(out.Items, j.Clone())
	}
	return out, nil
}

func (r *memoryRepository) ListRankingRows(context.Context) ([]*model.RankingRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]*model.RankingRow, 0, len(r.partitions))
	for _, p := range r.partitions {
		if p.player == nil {
			continue
		}
		rows = append(rows, &model.RankingRow{
			PlayerID:     p.player.ID,
			Name:         p.player.Name,
			ChannelName:  p.player.ChannelName,
			Subscribers:  p.player.Subscribers,
			ChannelPower: p.player.ChannelPower,
		})
	}
	return rows, nil
}

func (r *memoryRepository) Stats(context.Context) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s Stats
	for _, p := range r.partitions {
		if p.player == nil {
			continue
		}
		s.Players++
		s.Characters += int64(len(p.characters))
		for _, j := range p.content {
			if j.Status == model.ContentUploaded {
				s.UploadedContents++
			}
		}
	}
	return &s, nil
}

func (r *memoryRepository) GachaStats(context.Context) ([]*dao.RarityCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[model.Rarity]int64)
	for _, p := range r.partitions {
		for _, rec := range p.gacha {
			counts[rec.Rarity]++
		}
	}
	out := make([]*dao.RarityCount, 0, len(counts))
	for _, rarity := range model.RarityOrder {
		if n, ok := counts[rarity]; ok {
			out = append(out, &dao.RarityCount{Rarity: rarity, Count: n})
		}
	}
	return out, nil
}

func sortedCharacters(m map[string]*model.CharacterInstance) []*model.CharacterInstance {
	out := make([]*model.CharacterInstance, 0, len(m))
	for _, c := range m {
		out = append(out, c.Clone())
	}
	slices.SortFunc(out, func(a, b *model.CharacterInstance) int {
		if c := a.AcquiredAt.Compare(b.AcquiredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.InstanceID, b.InstanceID)
	})
	return out
}

func cloneSlots(m map[model.SlotType]*model.EquipmentSlot) []*model.EquipmentSlot {
	out := make([]*model.EquipmentSlot, 0, len(m))
	for _, t := range model.AllSlotTypes {
		if s, ok := m[t]; ok {
			out = append(out, s.Clone())
		}
	}
	return out
}

func findProducing(p *partition) *model.ContentJob {
	for _, j := range p.content {
		if j.Status == model.ContentProducing {
			return j.Clone()
		}
	}
	return nil
}

// memoryUnit 在分区副本上执行读写
type memoryUnit struct {
	p        *partition
	playerID string
}

func (u *memoryUnit) LoadPlayer(context.Context) (*model.Player, error) {
	if u.p.player == nil {
		return nil, ErrNotFound
	}
	return u.p.player.Clone(), nil
}

func (u *memoryUnit) CreatePlayer(_ context.Context, p *model.Player) error {
	if u.p.player == nil {
		u.p.player = p.Clone()
	}
	return nil
}

func (u *memoryUnit) SavePlayer(_ context.Context, p *model.Player) error {
	if u.p.player == nil {
		return errors.Newf("save unknown player %s", p.ID)
	}
	u.p.player = p.Clone()
	return nil
}

func (u *memoryUnit) ListCharacters(context.Context) ([]*model.CharacterInstance, error) {
	return sortedCharacters(u.p.characters), nil
}

func (u *memoryUnit) GetCharacter(_ context.Context, instanceID string) (*model.CharacterInstance, error) {
	if c, ok := u.p.characters[instanceID]; ok {
		return c.Clone(), nil
	}
	return nil, nil
}

func (u *memoryUnit) InsertCharacters(_ context.Context, list []*model.CharacterInstance) error {
	for _, c := range list {
		if _, ok := u.p.characters[c.InstanceID]; ok {
			return errors.Newf("duplicate character instance %s", c.InstanceID)
		}
		u.p.characters[c.InstanceID] = c.Clone()
	}
	return nil
}

func (u *memoryUnit) UpdateCharacter(_ context.Context, c *model.CharacterInstance) error {
	if _, ok := u.p.characters[c.InstanceID]; !ok {
		return errors.Newf("update unknown character %s", c.InstanceID)
	}
	u.p.characters[c.InstanceID] = c.Clone()
	return nil
}

func (u *memoryUnit) DeleteCharacter(_ context.Context, instanceID string) error {
	if _, ok := u.p.characters[instanceID]; !ok {
		return errors.Newf("delete unknown character %s", instanceID)
	}
	delete(u.p.characters, instanceID)
	return nil
}

func (u *memoryUnit) ListEquipment(context.Context) ([]*model.EquipmentSlot, error) {
	return cloneSlots(u.p.equipment), nil
}

func (u *memoryUnit) UpsertEquipment(_ context.Context, slots ...*model.EquipmentSlot) error {
	for _, s := range slots {
		u.p.equipment[s.Type] = s.Clone()
	}
	return nil
}

func (u *memoryUnit) GetContent(_ context.Context, id string) (*model.ContentJob, error) {
	if j, ok := u.p.content[id]; ok {
		return j.Clone(), nil
	}
	return nil, nil
}

func (u *memoryUnit) FindProducing(context.Context) (*model.ContentJob, error) {
	return findProducing(u.p), nil
}

func (u *memoryUnit) InsertContent(_ context.Context, j *model.ContentJob) error {
	if j.Status == model.ContentProducing && findProducing(u.p) != nil {
		return gameerr.StateConflict("a content job is already in production")
	}
	u.p.content[j.ID] = j.Clone()
	return nil
}

func (u *memoryUnit) UpdateContent(_ context.Context, j *model.ContentJob) error {
	if _, ok := u.p.content[j.ID]; !ok {
		return errors.Newf("update unknown content %s", j.ID)
	}
	u.p.content[j.ID] = j.Clone()
	return nil
}

func (u *memoryUnit) InsertGachaRecords(_ context.Context, records []*model.GachaRecord) error {
	for _, r := range records {
		c := *r
		u.p.gacha = append(u.p.gacha, &c)
	}
	return nil
}
