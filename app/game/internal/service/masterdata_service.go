package service

import (
	"github.com/lk2023060901/creatorsim/app/game/internal/masterdata"
)

// MasterDataService 主数据查询
type MasterDataService struct {
	store *masterdata.Store
}

// NewMasterDataService 创建主数据服务
func NewMasterDataService(store *masterdata.Store) *MasterDataService {
	return &MasterDataService{store: store}
}

// Version 当前版本
func (s *MasterDataService) Version() int {
	return s.store.Current().Version
}

// Dump 完整主数据
func (s *MasterDataService) Dump() *masterdata.Table {
	return s.store.Current()
}

// Reload 重新加载数据目录，校验失败时保持旧版本
func (s *MasterDataService) Reload() (int, error) {
	if err := s.store.Reload(); err != nil {
		return s.Version(), err
	}
	return s.Version(), nil
}
